package repositories

import (
	"time"

	"github.com/detachd/portal/internal/models"
)

// demoClaims is the fixed set of seed records blended into the insurer view.
// They are not persisted; InsurerView merges them at read time so that a
// fresh installation still renders a populated review queue.
var demoClaims = []models.ClaimRecord{
	{
		ID:               "00DEMO0000000000000000000J",
		ClaimNumber:      "DET-000101001",
		PolicyholderName: "John Smith",
		ClaimType:        "Auto Accident",
		Status:           models.ClaimStatusInReview,
		AmountClaimed:    25000,
		Description:      "Rear-end collision on the N1 highway, airbag deployment.",
		RiskScore:        75,
		Priority:         models.PriorityHigh,
		SubmittedAt:      time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC),
		LastActivity:     time.Date(2024, time.March, 6, 14, 5, 0, 0, time.UTC),
	},
	{
		ID:               "00DEMO0000000000000000000S",
		ClaimNumber:      "DET-000101002",
		PolicyholderName: "Sarah Johnson",
		ClaimType:        "Property Damage",
		Status:           models.ClaimStatusSubmitted,
		AmountClaimed:    8200,
		Description:      "Burst geyser damaged ceiling and carpets in two rooms.",
		RiskScore:        35,
		Priority:         models.PriorityLow,
		SubmittedAt:      time.Date(2024, time.March, 10, 16, 45, 0, 0, time.UTC),
		LastActivity:     time.Date(2024, time.March, 10, 16, 45, 0, 0, time.UTC),
	},
	{
		ID:               "00DEMO0000000000000000000M",
		ClaimNumber:      "DET-000101003",
		PolicyholderName: "Michael Brown",
		ClaimType:        "Theft",
		Status:           models.ClaimStatusPendingInformation,
		AmountClaimed:    12400,
		Description:      "Laptop and camera equipment stolen from vehicle.",
		RiskScore:        58,
		Priority:         models.PriorityMedium,
		SubmittedAt:      time.Date(2024, time.February, 27, 11, 0, 0, 0, time.UTC),
		LastActivity:     time.Date(2024, time.March, 1, 8, 20, 0, 0, time.UTC),
	},
	{
		ID:               "00DEMO0000000000000000000L",
		ClaimNumber:      "DET-000101004",
		PolicyholderName: "Linda Davis",
		ClaimType:        "Fire Damage",
		Status:           models.ClaimStatusApproved,
		AmountClaimed:    64000,
		Description:      "Kitchen fire spread to adjoining dining room.",
		RiskScore:        82,
		Priority:         models.PriorityHigh,
		SubmittedAt:      time.Date(2024, time.January, 18, 7, 15, 0, 0, time.UTC),
		LastActivity:     time.Date(2024, time.February, 2, 12, 0, 0, 0, time.UTC),
	},
}

// DemoClaims returns a copy of the seed records so that callers cannot mutate
// the shared fixtures.
func DemoClaims() []models.ClaimRecord {
	records := make([]models.ClaimRecord, len(demoClaims))
	copy(records, demoClaims)
	return records
}
