// Package views composes role-conditional slices of the claims data for the
// portal UI. Policyholders see their own claims; insurers see the merged
// global and demo view with search and filters applied.
package views

import (
	"context"
	"strings"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
)

// ClaimSource is the read side of the claims store that the composer needs.
type ClaimSource interface {
	ListForUser(ctx context.Context, userID, displayName string) ([]models.ClaimRecord, error)
	InsurerView(ctx context.Context) ([]models.ClaimRecord, error)
}

// Filter narrows a claim listing. Zero values mean "no constraint".
type Filter struct {
	// Search matches case-insensitively against claim number, policyholder
	// name, claim type, and description.
	Search   string
	Status   models.ClaimStatus
	Priority models.Priority
}

type Composer struct {
	claims ClaimSource
}

func NewComposer(claims ClaimSource) *Composer {
	return &Composer{claims: claims}
}

// ClaimsFor returns the slice of claims the user is allowed to see, filtered.
func (c *Composer) ClaimsFor(ctx context.Context, user *models.User, filter Filter) ([]models.ClaimRecord, error) {
	var (
		records []models.ClaimRecord
		err     error
	)
	switch user.Role {
	case models.RoleInsurer:
		if records, err = c.claims.InsurerView(ctx); err != nil {
			return nil, errors.Wrap(err, "insurer view")
		}
	case models.RolePolicyholder:
		if records, err = c.claims.ListForUser(ctx, user.ID, user.DisplayName); err != nil {
			return nil, errors.Wrap(err, "list claims for user")
		}
	default:
		return nil, errors.New("unknown role")
	}
	return Apply(records, filter), nil
}

// Apply filters the records by linear scan, preserving order. The data
// volumes here are demo scale; there is deliberately no index or pagination.
func Apply(records []models.ClaimRecord, filter Filter) []models.ClaimRecord {
	filtered := make([]models.ClaimRecord, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, record := range records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && record.Priority != filter.Priority {
			continue
		}
		if search != "" && !matchesSearch(record, search) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func matchesSearch(record models.ClaimRecord, search string) bool {
	for _, field := range []string{
		record.ClaimNumber,
		record.PolicyholderName,
		record.ClaimType,
		record.Description,
	} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
