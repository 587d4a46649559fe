package models

import "time"

// ClaimStatus enumerates the processing states of a claim.
//
// No transition graph is enforced: any update may set any status. Claims move
// through these states by explicit handler actions only.
type ClaimStatus string

const (
	ClaimStatusSubmitted          ClaimStatus = "Submitted"
	ClaimStatusInReview           ClaimStatus = "In Review"
	ClaimStatusApproved           ClaimStatus = "Approved"
	ClaimStatusRejected           ClaimStatus = "Rejected"
	ClaimStatusClosed             ClaimStatus = "Closed"
	ClaimStatusPendingInformation ClaimStatus = "Pending Information"
)

// Valid reports whether the status is one of the known enumerated values.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusInReview, ClaimStatusApproved,
		ClaimStatusRejected, ClaimStatusClosed, ClaimStatusPendingInformation:
		return true
	}
	return false
}

// SubmissionStatus is the branching rule applied when a claim is submitted:
// high-risk claims skip straight to review.
func SubmissionStatus(riskScore int) ClaimStatus {
	if riskScore > 70 {
		return ClaimStatusInReview
	}
	return ClaimStatusSubmitted
}

// Priority is the tier derived from the risk score.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// PriorityForRiskScore derives the priority tier from a 0-100 risk score.
// The High threshold matches the SubmissionStatus branch so that every claim
// that opens in review is also high priority.
func PriorityForRiskScore(riskScore int) Priority {
	switch {
	case riskScore > 70:
		return PriorityHigh
	case riskScore >= 40:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// AuditEntry is one event in a claim's audit trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Actor     string    `json:"actor"`
}

// ClaimRecord is the persisted unit of data representing one insurance claim
// and its processing history. Records are created once, mutated through the
// repository's update operation, and never deleted.
type ClaimRecord struct {
	// ID is an opaque identifier assigned at creation, immutable.
	ID string `db:"id" json:"id"`
	// ClaimNumber is the human-facing business key, immutable. Generation is
	// time plus a random component without a uniqueness check; the storage
	// layer surfaces the (statistically unlikely) collision as an error.
	ClaimNumber      string      `db:"claim_number" json:"claimNumber"`
	UserID           string      `db:"user_id" json:"userId,omitempty"`
	PolicyholderName string      `db:"policyholder_name" json:"policyholderName"`
	ClaimType        string      `db:"claim_type" json:"claimType"`
	Status           ClaimStatus `db:"status" json:"status"`
	AmountClaimed    float64     `db:"amount_claimed" json:"amountClaimed"`
	Description      string      `db:"description" json:"description"`
	RiskScore        int         `db:"risk_score" json:"riskScore"`
	Priority         Priority    `db:"priority" json:"priority"`
	SubmittedAt      time.Time   `db:"submitted_at" json:"submittedAt"`
	LastActivity     time.Time   `db:"last_activity" json:"lastActivity"`

	// AuditTrail is append-only and ordered newest first.
	AuditTrail []AuditEntry `db:"-" json:"auditTrail,omitempty"`
}
