package repositories_test

import (
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newClaimRepo(t *testing.T) *repositories.ClaimRepository {
	t.Helper()
	return repositories.NewClaimRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
}

func TestClaimRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "John Smith",
		ClaimType:        "Auto Accident",
		AmountClaimed:    25000,
		Description:      "Rear-end collision",
		RiskScore:        30,
	})
	require.NoError(t, err, "failed to create claim")
	require.NotEmpty(t, created.ID, "claim should get an ID")
	require.Regexp(t, regexp.MustCompile(`^DET-\d{9}$`), created.ClaimNumber, "claim number format")
	require.Equal(t, models.ClaimStatusSubmitted, created.Status, "low risk claims start as Submitted")
	require.Equal(t, models.PriorityLow, created.Priority)
	require.False(t, created.SubmittedAt.IsZero(), "submitted at should be stamped")
	require.Len(t, created.AuditTrail, 1, "create stamps a single audit entry")
	require.Equal(t, "Claim submitted", created.AuditTrail[0].Event)
	require.Equal(t, "John Smith", created.AuditTrail[0].Actor)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err, "failed to read claim")
	require.NotNil(t, got, "claim not found")
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.ClaimNumber, got.ClaimNumber)
	require.Equal(t, "John Smith", got.PolicyholderName)
	require.Equal(t, "Auto Accident", got.ClaimType)
	require.InDelta(t, 25000.0, got.AmountClaimed, 0.001)
	require.Len(t, got.AuditTrail, 1)
}

func TestClaimRepository_HighRiskSubmissionOpensInReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "Jane Doe",
		ClaimType:        "Auto Accident",
		AmountClaimed:    25000,
		RiskScore:        75,
	})
	require.NoError(t, err)
	require.Equal(t, models.ClaimStatusInReview, created.Status, "risk score above 70 opens in review")
	require.Equal(t, models.PriorityHigh, created.Priority)
}

func TestClaimRepository_GetMissing(t *testing.T) {
	t.Parallel()
	repo := newClaimRepo(t)

	got, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err, "missing claim is not an error")
	require.Nil(t, got, "missing claim should return nil")
}

func TestClaimRepository_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "John Smith",
		ClaimType:        "Theft",
		AmountClaimed:    5000,
		RiskScore:        20,
	})
	require.NoError(t, err)

	status := models.ClaimStatusApproved
	updated, err := repo.Update(ctx, created.ID, repositories.ClaimUpdate{Status: &status})
	require.NoError(t, err, "failed to update claim")
	require.NotNil(t, updated)
	require.Equal(t, models.ClaimStatusApproved, updated.Status)
	require.True(t, updated.LastActivity.After(created.LastActivity),
		"last activity must move strictly forward")

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.ClaimStatusApproved, got.Status)
}

func TestClaimRepository_UpdateDisjointFieldsBothPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "John Smith",
		ClaimType:        "Theft",
		AmountClaimed:    5000,
		RiskScore:        20,
	})
	require.NoError(t, err)

	description := "Updated description"
	_, err = repo.Update(ctx, created.ID, repositories.ClaimUpdate{Description: &description})
	require.NoError(t, err)

	status := models.ClaimStatusPendingInformation
	_, err = repo.Update(ctx, created.ID, repositories.ClaimUpdate{Status: &status})
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Updated description", got.Description, "earlier update must survive")
	require.Equal(t, models.ClaimStatusPendingInformation, got.Status, "later update must apply")
}

func TestClaimRepository_UpdateRiskScoreRederivesPriority(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "John Smith",
		ClaimType:        "Theft",
		AmountClaimed:    5000,
		RiskScore:        20,
	})
	require.NoError(t, err)
	require.Equal(t, models.PriorityLow, created.Priority)

	riskScore := 85
	updated, err := repo.Update(ctx, created.ID, repositories.ClaimUpdate{RiskScore: &riskScore})
	require.NoError(t, err)
	require.Equal(t, models.PriorityHigh, updated.Priority)
}

func TestClaimRepository_UpdateMissing(t *testing.T) {
	t.Parallel()
	repo := newClaimRepo(t)

	status := models.ClaimStatusClosed
	updated, err := repo.Update(context.Background(), "nonexistent", repositories.ClaimUpdate{Status: &status})
	require.NoError(t, err)
	require.Nil(t, updated, "missing claim should return nil")
}

func TestClaimRepository_AppendAudit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "John Smith",
		ClaimType:        "Theft",
		AmountClaimed:    5000,
	})
	require.NoError(t, err)

	require.NoError(t, repo.AppendAudit(ctx, created.ID, "Note added", "Agent Adams"))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.AuditTrail, 2, "audit trail grows monotonically")
	require.Equal(t, "Note added", got.AuditTrail[0].Event, "newest entry comes first")
	require.Equal(t, "Claim submitted", got.AuditTrail[1].Event)

	require.Error(t, repo.AppendAudit(ctx, "nonexistent", "Note added", "Agent Adams"))
}

func TestClaimRepository_ListAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	names := []string{"First Claimant", "Second Claimant", "Third Claimant"}
	for _, name := range names {
		_, err := repo.Create(ctx, repositories.NewClaim{
			PolicyholderName: name,
			ClaimType:        "Theft",
			AmountClaimed:    100,
		})
		require.NoError(t, err)
	}

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(names), "list length equals number of creates")
	require.Equal(t, "Third Claimant", records[0].PolicyholderName, "newest first")
	require.Equal(t, "First Claimant", records[2].PolicyholderName)
	for _, record := range records {
		require.NotEmpty(t, record.AuditTrail, "lists include audit trails")
	}
}

func TestClaimRepository_ListForUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	repo := repositories.NewClaimRepository(dbs, logger)
	users := repositories.NewUserRepository(dbs, logger)

	owner, err := users.Register(ctx, "maria@example.com", "correct horse battery", "Maria Santos", models.RolePolicyholder)
	require.NoError(t, err)

	owned, err := repo.Create(ctx, repositories.NewClaim{
		UserID:           owner.ID,
		PolicyholderName: "Maria Santos",
		ClaimType:        "Theft",
		AmountClaimed:    900,
	})
	require.NoError(t, err)

	// A claim recorded before owner IDs existed.
	unowned, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "Peter Petersen",
		ClaimType:        "Property Damage",
		AmountClaimed:    1200,
	})
	require.NoError(t, err)

	t.Run("identity join wins when present", func(t *testing.T) {
		records, err := repo.ListForUser(ctx, owner.ID, owner.DisplayName)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, owned.ID, records[0].ID)
	})

	t.Run("heuristic name fallback for unlinked claims", func(t *testing.T) {
		records, err := repo.ListForUser(ctx, "unknown-user-id", "Peter")
		require.NoError(t, err)
		require.Len(t, records, 1, "substring of display name should match policyholder name")
		require.Equal(t, unowned.ID, records[0].ID)
	})

	t.Run("fallback results are a subset of ListAll", func(t *testing.T) {
		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		records, err := repo.ListForUser(ctx, "unknown-user-id", "Peter Petersen")
		require.NoError(t, err)
		ids := make(map[string]bool, len(all))
		for _, record := range all {
			ids[record.ID] = true
		}
		for _, record := range records {
			require.True(t, ids[record.ID], "fallback returned a record not in ListAll")
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		records, err := repo.ListForUser(ctx, "unknown-user-id", "Nobody Anywhere")
		require.NoError(t, err)
		require.Empty(t, records)
	})
}

func TestClaimRepository_InsurerView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newClaimRepo(t)

	created, err := repo.Create(ctx, repositories.NewClaim{
		PolicyholderName: "Maria Santos",
		ClaimType:        "Theft",
		AmountClaimed:    900,
	})
	require.NoError(t, err)

	records, err := repo.InsurerView(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1+len(repositories.DemoClaims()), "stored records merged with demo records")
	require.Equal(t, created.ID, records[0].ID, "stored records come first, newest first")

	seen := map[string]int{}
	for _, record := range records {
		seen[record.ClaimNumber]++
	}
	for claimNumber, count := range seen {
		require.Equalf(t, 1, count, "claim number %s appears more than once", claimNumber)
	}
}
