package views_test

import (
	"context"
	"testing"

	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/views"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	forUser []models.ClaimRecord
	insurer []models.ClaimRecord
}

func (f *fakeSource) ListForUser(_ context.Context, _, _ string) ([]models.ClaimRecord, error) {
	return f.forUser, nil
}

func (f *fakeSource) InsurerView(_ context.Context) ([]models.ClaimRecord, error) {
	return f.insurer, nil
}

var sampleRecords = []models.ClaimRecord{
	{
		ClaimNumber:      "DET-000000001",
		PolicyholderName: "Maria Santos",
		ClaimType:        "Auto Accident",
		Status:           models.ClaimStatusInReview,
		Priority:         models.PriorityHigh,
		Description:      "Collision at an intersection",
	},
	{
		ClaimNumber:      "DET-000000002",
		PolicyholderName: "Peter Petersen",
		ClaimType:        "Theft",
		Status:           models.ClaimStatusSubmitted,
		Priority:         models.PriorityLow,
		Description:      "Stolen bicycle",
	},
	{
		ClaimNumber:      "DET-000000003",
		PolicyholderName: "Linda Davis",
		ClaimType:        "Fire Damage",
		Status:           models.ClaimStatusInReview,
		Priority:         models.PriorityMedium,
		Description:      "Kitchen fire",
	},
}

func TestApply(t *testing.T) {
	tests := []struct {
		name             string
		filter           views.Filter
		wantClaimNumbers []string
	}{
		{
			name:             "no filter returns everything in order",
			filter:           views.Filter{},
			wantClaimNumbers: []string{"DET-000000001", "DET-000000002", "DET-000000003"},
		},
		{
			name:             "status filter",
			filter:           views.Filter{Status: models.ClaimStatusInReview},
			wantClaimNumbers: []string{"DET-000000001", "DET-000000003"},
		},
		{
			name:             "priority filter",
			filter:           views.Filter{Priority: models.PriorityLow},
			wantClaimNumbers: []string{"DET-000000002"},
		},
		{
			name:             "search matches claim number",
			filter:           views.Filter{Search: "det-000000002"},
			wantClaimNumbers: []string{"DET-000000002"},
		},
		{
			name:             "search matches name case-insensitively",
			filter:           views.Filter{Search: "maria"},
			wantClaimNumbers: []string{"DET-000000001"},
		},
		{
			name:             "search matches description",
			filter:           views.Filter{Search: "bicycle"},
			wantClaimNumbers: []string{"DET-000000002"},
		},
		{
			name:             "combined filters",
			filter:           views.Filter{Status: models.ClaimStatusInReview, Search: "fire"},
			wantClaimNumbers: []string{"DET-000000003"},
		},
		{
			name:             "no match",
			filter:           views.Filter{Search: "submarine"},
			wantClaimNumbers: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := views.Apply(sampleRecords, tt.filter)
			gotNumbers := make([]string, 0, len(got))
			for _, record := range got {
				gotNumbers = append(gotNumbers, record.ClaimNumber)
			}
			require.Equal(t, tt.wantClaimNumbers, gotNumbers)
		})
	}
}

func TestComposer_ClaimsFor(t *testing.T) {
	source := &fakeSource{
		forUser: sampleRecords[:1],
		insurer: sampleRecords,
	}
	composer := views.NewComposer(source)
	ctx := context.Background()

	t.Run("policyholder sees own claims only", func(t *testing.T) {
		records, err := composer.ClaimsFor(ctx, &models.User{Role: models.RolePolicyholder}, views.Filter{})
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("insurer sees merged view", func(t *testing.T) {
		records, err := composer.ClaimsFor(ctx, &models.User{Role: models.RoleInsurer}, views.Filter{})
		require.NoError(t, err)
		require.Len(t, records, 3)
	})

	t.Run("insurer filters apply", func(t *testing.T) {
		records, err := composer.ClaimsFor(ctx, &models.User{Role: models.RoleInsurer},
			views.Filter{Status: models.ClaimStatusInReview})
		require.NoError(t, err)
		require.Len(t, records, 2)
	})

	t.Run("unknown role errors", func(t *testing.T) {
		_, err := composer.ClaimsFor(ctx, &models.User{Role: "auditor"}, views.Filter{})
		require.Error(t, err)
	})
}
