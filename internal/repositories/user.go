package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/sqlite"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.NewSentinel("email already registered")
	ErrInvalidCredentials = errors.NewSentinel("invalid credentials")
)

type UserRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewUserRepository(dbs *sqlite.Database, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		dbs:    dbs,
		logger: logger.With("source", "UserRepository"),
	}
}

// Register creates a user with a bcrypt-hashed password.
func (r *UserRepository) Register(
	ctx context.Context,
	email string,
	password string,
	displayName string,
	role models.Role,
) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	stmt := `INSERT INTO users (id, email, display_name, role, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt,
		user.ID, user.Email, user.DisplayName, user.Role, user.PasswordHash, user.CreatedAt,
	); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, errors.Wrap(ErrEmailTaken, "insert user", slog.String("email", user.Email))
		}
		return nil, errors.Wrap(err, "insert user")
	}

	return &user, nil
}

// Authenticate checks the credentials and returns the user on success.
// A missing user and a wrong password both return ErrInvalidCredentials so
// that the response does not reveal which one it was.
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "get user by email")
	}
	if user == nil {
		// Burn a comparison so that the timing matches the wrong-password path.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given ID, or (nil, nil) when it does not exist.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	stmt := `SELECT id, email, display_name, role, password_hash, created_at FROM users WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &user, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read user", slog.String("id", id))
	}
	return &user, nil
}

// GetByEmail returns the user with the given email, or (nil, nil) when it does not exist.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	stmt := `SELECT id, email, display_name, role, password_hash, created_at FROM users WHERE email = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &user, stmt, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read user by email")
	}
	return &user, nil
}

// Exists reports whether a user with the given ID exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	stmt := `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`
	if err := r.dbs.ReadOnly.GetContext(ctx, &exists, stmt, id); err != nil {
		return false, errors.Wrap(err, "check user exists", slog.String("id", id))
	}
	return exists, nil
}
