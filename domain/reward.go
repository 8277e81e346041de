package domain

import "time"

// Reward is something members spend points on. Shareable rewards accept
// pooled contributions from several members.
type Reward struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CostPoints  int       `json:"cost_points"`
	IsShareable bool      `json:"is_shareable"`
	IsActive    bool      `json:"is_active"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContributionStatus transitions monotonically:
// reserved -> submitted -> {consumed, released}, or reserved -> released.
// A consumed contribution is never rewritten.
type ContributionStatus string

const (
	ContributionReserved  ContributionStatus = "reserved"
	ContributionSubmitted ContributionStatus = "submitted"
	ContributionReleased  ContributionStatus = "released"
	ContributionConsumed  ContributionStatus = "consumed"
)

// IsActive reports whether the contribution still counts toward the
// current pooling cycle.
func (s ContributionStatus) IsActive() bool {
	return s == ContributionReserved || s == ContributionSubmitted
}

// RewardContribution reserves part of a member's balance toward one reward.
type RewardContribution struct {
	ID             string             `json:"id"`
	FamilyID       string             `json:"family_id"`
	RewardID       string             `json:"reward_id"`
	MemberID       string             `json:"member_id"`
	PointsReserved int                `json:"points_reserved"`
	Status         ContributionStatus `json:"status"`
	RedemptionID   string             `json:"redemption_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// RedemptionStatus for an outstanding redeem request.
type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionApproved RedemptionStatus = "approved"
	RedemptionRejected RedemptionStatus = "rejected"
)

// RewardRedemption is a request to redeem a reward, reviewed by a manager.
// While one is pending, further contributions to the reward are blocked.
type RewardRedemption struct {
	ID            string           `json:"id"`
	RewardID      string           `json:"reward_id"`
	RequestedByID string           `json:"requested_by_id"`
	Status        RedemptionStatus `json:"status"`
	Comment       string           `json:"comment,omitempty"`
	ReviewedByID  string           `json:"reviewed_by_id,omitempty"`
	RequestedAt   time.Time        `json:"requested_at"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
}

// ContributionProgress is the derived pooling state for one reward. It is
// computed on demand and never persisted.
type ContributionProgress struct {
	RewardID            string               `json:"reward_id"`
	CostPoints          int                  `json:"cost_points"`
	TotalReserved       int                  `json:"total_reserved"`
	RemainingPoints     int                  `json:"remaining_points"`
	PendingRedemptionID string               `json:"pending_redemption_id,omitempty"`
	Contributions       []RewardContribution `json:"contributions"`
}

// Filled reports whether the pool covers the reward cost and a redemption
// request may be opened.
func (p *ContributionProgress) Filled() bool {
	return p != nil && p.RemainingPoints == 0
}
