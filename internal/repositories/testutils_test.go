package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/detachd/portal/internal/sqlite"
	"github.com/detachd/portal/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory database with the schema applied.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		_ = dbs.Close()
	})
	return dbs
}
