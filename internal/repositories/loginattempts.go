package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/sqlite"
)

// LoginAttemptRepository keeps a sliding window of failed login attempts per
// key (email plus remote address). It replaces the client-side
// rate_limit_<key> timestamp list, which was trivially bypassed by clearing
// browser storage.
type LoginAttemptRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
	window time.Duration
	limit  int
}

const (
	defaultAttemptWindow = 15 * time.Minute
	defaultAttemptLimit  = 5
)

func NewLoginAttemptRepository(dbs *sqlite.Database, logger *slog.Logger) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		dbs:    dbs,
		logger: logger.With("source", "LoginAttemptRepository"),
		window: defaultAttemptWindow,
		limit:  defaultAttemptLimit,
	}
}

// Allowed reports whether another attempt for the key is within the limit.
func (r *LoginAttemptRepository) Allowed(ctx context.Context, key string) (bool, error) {
	var count int
	cutoff := time.Now().Add(-r.window).Unix()
	stmt := `SELECT COUNT(*) FROM login_attempts WHERE key = ? AND attempted_at > ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &count, stmt, key, cutoff); err != nil {
		return false, errors.Wrap(err, "count login attempts", slog.String("key", key))
	}
	return count < r.limit, nil
}

// Record stores a failed attempt and prunes entries older than the window.
func (r *LoginAttemptRepository) Record(ctx context.Context, key string) error {
	now := time.Now()
	stmt := `INSERT INTO login_attempts (key, attempted_at) VALUES (?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, key, now.Unix()); err != nil {
		return errors.Wrap(err, "insert login attempt", slog.String("key", key))
	}
	stmt = `DELETE FROM login_attempts WHERE key = ? AND attempted_at <= ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, key, now.Add(-r.window).Unix()); err != nil {
		return errors.Wrap(err, "prune login attempts", slog.String("key", key))
	}
	return nil
}

// Reset clears the window for the key after a successful login.
func (r *LoginAttemptRepository) Reset(ctx context.Context, key string) error {
	stmt := `DELETE FROM login_attempts WHERE key = ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, key); err != nil {
		return errors.Wrap(err, "reset login attempts", slog.String("key", key))
	}
	return nil
}
