package domain

import "time"

// ClaimInterval bounds how often a special task template may be claimed.
type ClaimInterval string

const (
	IntervalDaily   ClaimInterval = "daily"
	IntervalWeekly  ClaimInterval = "weekly"
	IntervalMonthly ClaimInterval = "monthly"
)

func (i ClaimInterval) IsValid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	default:
		return false
	}
}

// SpecialTaskTemplate describes an on-demand chore a child can claim. Each
// claim generates a one-off task occurrence linked back to the template.
type SpecialTaskTemplate struct {
	ID                   string        `json:"id"`
	FamilyID             string        `json:"family_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	Points               int           `json:"points"`
	IntervalType         ClaimInterval `json:"interval_type"`
	MaxClaimsPerInterval int           `json:"max_claims_per_interval"`
	IsActive             bool          `json:"is_active"`
	CreatedByID          string        `json:"created_by_id"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// TemplateAvailability reports how many claims a member has left in the
// current interval window.
type TemplateAvailability struct {
	Template       SpecialTaskTemplate `json:"template"`
	UsedCount      int                 `json:"used_count"`
	RemainingCount int                 `json:"remaining_count"`
}
