package contexthelpers

import (
	"context"
	"net/http"

	"github.com/detachd/portal/internal/models"
)

func AuthenticateContext(r *http.Request, userID string, role models.Role) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, isAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, authenticatedUserIDContextKey, userID)
	ctx = context.WithValue(ctx, authenticatedUserRoleContextKey, role)
	return r.WithContext(ctx)
}
