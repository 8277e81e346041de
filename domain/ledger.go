package domain

import "time"

// LedgerSource classifies where a points movement came from.
type LedgerSource string

const (
	SourceTaskApproval       LedgerSource = "task_approval"
	SourceRewardRedemption   LedgerSource = "reward_redemption"
	SourceRewardContribution LedgerSource = "reward_contribution"
	SourceTaskPenalty        LedgerSource = "task_penalty"
	SourceManualAdjustment   LedgerSource = "manual_adjustment"
)

// LedgerEntry is one append-only points movement. A member's balance is the
// sum of their deltas; reservations are negative deltas that a rejected
// redemption later compensates with a positive one.
type LedgerEntry struct {
	ID          string       `json:"id"`
	FamilyID    string       `json:"family_id"`
	MemberID    string       `json:"member_id"`
	SourceType  LedgerSource `json:"source_type"`
	SourceID    string       `json:"source_id"`
	PointsDelta int          `json:"points_delta"`
	Description string       `json:"description"`
	CreatedByID string       `json:"created_by_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
