package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/random"
	"github.com/detachd/portal/internal/sqlite"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// ErrDuplicateClaimNumber is returned when claim number generation collides
// with an existing record. Generation is time plus a random component without
// a pre-check, so this is possible in principle; the UNIQUE column turns the
// collision into an error instead of a corrupted index.
var ErrDuplicateClaimNumber = errors.NewSentinel("duplicate claim number")

type ClaimRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewClaimRepository(dbs *sqlite.Database, logger *slog.Logger) *ClaimRepository {
	return &ClaimRepository{
		dbs:    dbs,
		logger: logger.With("source", "ClaimRepository"),
	}
}

// NewClaim carries the caller-supplied fields for claim creation. Identity,
// business key, priority, and timestamps are assigned by Create.
type NewClaim struct {
	UserID           string
	PolicyholderName string
	ClaimType        string
	Status           models.ClaimStatus
	AmountClaimed    float64
	Description      string
	RiskScore        int
}

// ClaimUpdate carries a partial set of fields for Update. Nil pointers leave
// the stored value untouched, so concurrent updates with disjoint field sets
// both persist.
type ClaimUpdate struct {
	PolicyholderName *string
	ClaimType        *string
	Status           *models.ClaimStatus
	AmountClaimed    *float64
	Description      *string
	RiskScore        *int
}

// newClaimNumber generates a human-facing business key from the current time
// plus a random component, e.g. DET-384721095.
func newClaimNumber(now time.Time) (string, error) {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	suffix, err := random.Digits(3)
	if err != nil {
		return "", errors.Wrap(err, "generate random digits")
	}
	return fmt.Sprintf("DET-%s%s", millis[len(millis)-6:], suffix), nil
}

// Create assigns identity and business key to the claim, stamps the initial
// audit entry, and persists both in a single transaction.
func (r *ClaimRepository) Create(ctx context.Context, claim NewClaim) (*models.ClaimRecord, error) {
	var err error
	now := time.Now().UTC()

	status := claim.Status
	if status == "" {
		status = models.SubmissionStatus(claim.RiskScore)
	}

	record := models.ClaimRecord{
		ID:               ulid.Make().String(),
		UserID:           claim.UserID,
		PolicyholderName: claim.PolicyholderName,
		ClaimType:        claim.ClaimType,
		Status:           status,
		AmountClaimed:    claim.AmountClaimed,
		Description:      claim.Description,
		RiskScore:        claim.RiskScore,
		Priority:         models.PriorityForRiskScore(claim.RiskScore),
		SubmittedAt:      now,
		LastActivity:     now,
	}
	if record.ClaimNumber, err = newClaimNumber(now); err != nil {
		return nil, errors.Wrap(err, "new claim number")
	}

	var tx *sqlx.Tx
	if tx, err = r.dbs.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := `INSERT INTO claims (
    id, claim_number, user_id, policyholder_name, claim_type, status,
    amount_claimed, description, risk_score, priority, submitted_at, last_activity
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, stmt,
		record.ID, record.ClaimNumber, nullableID(record.UserID), record.PolicyholderName,
		record.ClaimType, record.Status, record.AmountClaimed, record.Description,
		record.RiskScore, record.Priority, record.SubmittedAt, record.LastActivity,
	); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, errors.Wrap(ErrDuplicateClaimNumber, "insert claim",
				slog.String("claimNumber", record.ClaimNumber))
		}
		return nil, errors.Wrap(err, "insert claim")
	}

	initial := models.AuditEntry{
		Timestamp: now,
		Event:     "Claim submitted",
		Actor:     record.PolicyholderName,
	}
	stmt = `INSERT INTO claim_audit_events (claim_id, created_at, event, actor) VALUES (?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, stmt, record.ID, initial.Timestamp, initial.Event, initial.Actor); err != nil {
		return nil, errors.Wrap(err, "insert audit entry")
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}

	record.AuditTrail = []models.AuditEntry{initial}
	return &record, nil
}

// Get returns the claim with the given ID, or (nil, nil) when it does not exist.
func (r *ClaimRepository) Get(ctx context.Context, id string) (*models.ClaimRecord, error) {
	var record models.ClaimRecord
	stmt := `SELECT id, claim_number, COALESCE(user_id, '') AS user_id, policyholder_name, claim_type,
       status, amount_claimed, description, risk_score, priority, submitted_at, last_activity
FROM claims WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &record, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read claim", slog.String("id", id))
	}

	trail, err := r.auditTrail(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "read audit trail")
	}
	record.AuditTrail = trail

	return &record, nil
}

// Update merges the given fields into the stored record inside one
// transaction. Field-level last-writer-wins; LastActivity moves strictly
// forward on every call. Returns (nil, nil) when the claim does not exist.
func (r *ClaimRepository) Update(ctx context.Context, id string, update ClaimUpdate) (*models.ClaimRecord, error) {
	var (
		err error
		tx  *sqlx.Tx
	)
	if tx, err = r.dbs.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var record models.ClaimRecord
	stmt := `SELECT id, claim_number, COALESCE(user_id, '') AS user_id, policyholder_name, claim_type,
       status, amount_claimed, description, risk_score, priority, submitted_at, last_activity
FROM claims WHERE id = ?`
	if err = tx.GetContext(ctx, &record, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read claim for update", slog.String("id", id))
	}

	if update.PolicyholderName != nil {
		record.PolicyholderName = *update.PolicyholderName
	}
	if update.ClaimType != nil {
		record.ClaimType = *update.ClaimType
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.AmountClaimed != nil {
		record.AmountClaimed = *update.AmountClaimed
	}
	if update.Description != nil {
		record.Description = *update.Description
	}
	if update.RiskScore != nil {
		record.RiskScore = *update.RiskScore
		record.Priority = models.PriorityForRiskScore(record.RiskScore)
	}

	now := time.Now().UTC()
	if !now.After(record.LastActivity) {
		// Clock resolution or skew; keep the strictly-increasing guarantee.
		now = record.LastActivity.Add(time.Millisecond)
	}
	record.LastActivity = now

	stmt = `UPDATE claims SET policyholder_name = ?, claim_type = ?, status = ?, amount_claimed = ?,
       description = ?, risk_score = ?, priority = ?, last_activity = ? WHERE id = ?`
	if _, err = tx.ExecContext(ctx, stmt,
		record.PolicyholderName, record.ClaimType, record.Status, record.AmountClaimed,
		record.Description, record.RiskScore, record.Priority, record.LastActivity, record.ID,
	); err != nil {
		return nil, errors.Wrap(err, "update claim", slog.String("id", id))
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}

	trail, err := r.auditTrail(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "read audit trail")
	}
	record.AuditTrail = trail

	return &record, nil
}

// AppendAudit appends an event to the claim's audit trail. The trail is
// append-only; entries are never updated or removed.
func (r *ClaimRepository) AppendAudit(ctx context.Context, id, event, actor string) error {
	stmt := `INSERT INTO claim_audit_events (claim_id, created_at, event, actor)
SELECT id, ?, ?, ? FROM claims WHERE id = ?`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, time.Now().UTC(), event, actor, id)
	if err != nil {
		return errors.Wrap(err, "insert audit entry", slog.String("id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.New("claim not found", slog.String("id", id))
	}
	return nil
}

// ListAll returns every claim, newest first, without pagination. The ordering
// is derived at query time from the time-ordered IDs rather than maintained
// as a separate index.
func (r *ClaimRepository) ListAll(ctx context.Context) ([]models.ClaimRecord, error) {
	var records []models.ClaimRecord
	stmt := `SELECT id, claim_number, COALESCE(user_id, '') AS user_id, policyholder_name, claim_type,
       status, amount_claimed, description, risk_score, priority, submitted_at, last_activity
FROM claims ORDER BY id DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt); err != nil {
		return nil, errors.Wrap(err, "list claims")
	}
	if err := r.attachAuditTrails(ctx, records); err != nil {
		return nil, errors.Wrap(err, "attach audit trails")
	}
	return records, nil
}

// ListForUser returns the claims belonging to the user, newest first.
//
// Claims are joined on user ID. When that yields nothing, the legacy fallback
// scans all claims and matches the user's display name against the
// policyholder name, case-insensitively and in either direction. This is a
// heuristic, not an identity join: it can over-match users with overlapping
// names and under-match after renames. It is kept for claims recorded before
// owner IDs existed.
func (r *ClaimRepository) ListForUser(ctx context.Context, userID, displayName string) ([]models.ClaimRecord, error) {
	var records []models.ClaimRecord
	stmt := `SELECT id, claim_number, COALESCE(user_id, '') AS user_id, policyholder_name, claim_type,
       status, amount_claimed, description, risk_score, priority, submitted_at, last_activity
FROM claims WHERE user_id = ? ORDER BY id DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt, userID); err != nil {
		return nil, errors.Wrap(err, "list claims for user", slog.String("userID", userID))
	}

	if len(records) == 0 && displayName != "" {
		all, err := r.ListAll(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list all claims for name fallback")
		}
		for _, record := range all {
			if nameMatches(displayName, record.PolicyholderName) {
				records = append(records, record)
			}
		}
		return records, nil
	}

	if err := r.attachAuditTrails(ctx, records); err != nil {
		return nil, errors.Wrap(err, "attach audit trails")
	}
	return records, nil
}

// InsurerView returns all stored claims merged with the fixed demo records,
// de-duplicated by claim number, newest first. Stored records win over demo
// records sharing a business key.
func (r *ClaimRepository) InsurerView(ctx context.Context) ([]models.ClaimRecord, error) {
	records, err := r.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all claims")
	}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.ClaimNumber] = struct{}{}
	}
	for _, demo := range DemoClaims() {
		if _, ok := seen[demo.ClaimNumber]; ok {
			continue
		}
		records = append(records, demo)
	}
	return records, nil
}

// nameMatches reports whether the display name and the policyholder name
// overlap as case-insensitive substrings of each other.
func nameMatches(displayName, policyholderName string) bool {
	display := strings.ToLower(strings.TrimSpace(displayName))
	policyholder := strings.ToLower(strings.TrimSpace(policyholderName))
	if display == "" || policyholder == "" {
		return false
	}
	return strings.Contains(policyholder, display) || strings.Contains(display, policyholder)
}

func (r *ClaimRepository) auditTrail(ctx context.Context, claimID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	stmt := `SELECT created_at, event, actor FROM claim_audit_events
WHERE claim_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, stmt, claimID)
	if err != nil {
		return nil, errors.Wrap(err, "query audit events")
	}
	defer func() {
		if err = rows.Close(); err != nil {
			err = errors.Wrap(err, "close rows")
			r.logger.Error("could not close rows", errors.SlogError(err))
		}
	}()
	for rows.Next() {
		var entry models.AuditEntry
		if err = rows.Scan(&entry.Timestamp, &entry.Event, &entry.Actor); err != nil {
			return nil, errors.Wrap(err, "scan audit event")
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return entries, nil
}

// attachAuditTrails loads the newest-first audit trail for each record in one query.
func (r *ClaimRepository) attachAuditTrails(ctx context.Context, records []models.ClaimRecord) error {
	if len(records) == 0 {
		return nil
	}
	trails := make(map[string][]models.AuditEntry, len(records))
	stmt := `SELECT claim_id, created_at, event, actor FROM claim_audit_events
ORDER BY created_at DESC, id DESC`
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, stmt)
	if err != nil {
		return errors.Wrap(err, "query audit events")
	}
	defer func() {
		if err = rows.Close(); err != nil {
			err = errors.Wrap(err, "close rows")
			r.logger.Error("could not close rows", errors.SlogError(err))
		}
	}()
	for rows.Next() {
		var (
			claimID string
			entry   models.AuditEntry
		)
		if err = rows.Scan(&claimID, &entry.Timestamp, &entry.Event, &entry.Actor); err != nil {
			return errors.Wrap(err, "scan audit event")
		}
		trails[claimID] = append(trails[claimID], entry)
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "rows error")
	}
	for i := range records {
		records[i].AuditTrail = trails[records[i].ID]
	}
	return nil
}

// nullableID maps an empty string to NULL so that unowned claims do not
// violate the foreign key on user_id.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
