package pprofserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The server must listen on the configured host:port as-is. Reformatting the
// address used to produce an invalid listen address from host:port configs.
func TestNewServerKeepsAddr(t *testing.T) {
	assert.Equal(t, "localhost:6061", newServer("localhost:6061").Addr)
	assert.Equal(t, "[::1]:0", newServer("[::1]:0").Addr)
}

func TestHandleRegistersPprofRoutes(t *testing.T) {
	mux := newServeMux()
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
}
