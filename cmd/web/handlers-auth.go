package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/detachd/portal/internal/contexthelpers"
	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/repositories"
)

const minPasswordLength = 8

type userResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        models.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

type authResponse struct {
	Token  string       `json:"token"`
	Expiry time.Time    `json:"expiry"`
	User   userResponse `json:"user"`
}

// mintSession renews the session token, stores the identity in the session,
// and commits it so the token can be handed to the client as a bearer token.
func (app *application) mintSession(r *http.Request, user *models.User) (string, time.Time, error) {
	ctx := r.Context()
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		return "", time.Time{}, errors.Wrap(err, "renew session token")
	}
	app.sessionManager.Put(ctx, string(userIDSessionKey), user.ID)
	app.sessionManager.Put(ctx, string(userRoleSessionKey), string(user.Role))
	token, expiry, err := app.sessionManager.Commit(ctx)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "commit session")
	}
	return token, expiry, nil
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string      `json:"email"`
		Password    string      `json:"password"`
		DisplayName string      `json:"displayName"`
		Role        models.Role `json:"role"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Role == "" {
		req.Role = models.RolePolicyholder
	}
	switch {
	case !strings.Contains(req.Email, "@"):
		app.clientError(w, r, http.StatusBadRequest, "a valid email is required")
		return
	case len(req.Password) < minPasswordLength:
		app.clientError(w, r, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	case req.DisplayName == "":
		app.clientError(w, r, http.StatusBadRequest, "display name is required")
		return
	case !req.Role.Valid():
		app.clientError(w, r, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := app.users.Register(r.Context(), req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			app.clientError(w, r, http.StatusConflict, "email already registered")
			return
		}
		app.serverError(w, r, err)
		return
	}

	token, expiry, err := app.mintSession(r, user)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, authResponse{Token: token, Expiry: expiry, User: newUserResponse(user)})
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	throttleKey := fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(req.Email)), remoteHost(r))
	allowed, err := app.loginAttempts.Allowed(r.Context(), throttleKey)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !allowed {
		app.clientError(w, r, http.StatusTooManyRequests, "too many failed login attempts, try again later")
		return
	}

	user, err := app.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCredentials) {
			if recordErr := app.loginAttempts.Record(r.Context(), throttleKey); recordErr != nil {
				app.logger.LogAttrs(r.Context(), slog.LevelError, "record login attempt", errors.SlogError(recordErr))
			}
			app.clientError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err = app.loginAttempts.Reset(r.Context(), throttleKey); err != nil {
		app.serverError(w, r, err)
		return
	}

	token, expiry, err := app.mintSession(r, user)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, authResponse{Token: token, Expiry: expiry, User: newUserResponse(user)})
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

func (app *application) verify(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	user, err := app.users.Get(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]userResponse{"user": newUserResponse(user)})
}
