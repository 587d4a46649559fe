package contexthelpers

import (
	"context"

	"github.com/detachd/portal/internal/models"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(isAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

func AuthenticatedUserID(ctx context.Context) string {
	userID, ok := ctx.Value(authenticatedUserIDContextKey).(string)
	if !ok {
		return ""
	}

	return userID
}

func AuthenticatedUserRole(ctx context.Context) models.Role {
	role, ok := ctx.Value(authenticatedUserRoleContextKey).(models.Role)
	if !ok {
		return ""
	}

	return role
}
