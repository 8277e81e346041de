package transport

// TimeOfDayRequest carries a wall-clock due time in the request payload.
type TimeOfDayRequest struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type TaskCreateRequest struct {
	FamilyID        string            `json:"family_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	AssigneeID      string            `json:"assignee_id"`
	RecurrenceKind  string            `json:"recurrence_kind"`
	DueMode         string            `json:"due_mode"`
	ActiveWeekdays  []int             `json:"active_weekdays"`
	DueTime         *TimeOfDayRequest `json:"due_time"`
	DueAt           string            `json:"due_at"`
	Points          int               `json:"points"`
	PenaltyEnabled  bool              `json:"penalty_enabled"`
	PenaltyPoints   int               `json:"penalty_points"`
	ReminderOffsets []int             `json:"reminder_offsets_minutes"`
}

type TaskUpdateRequest struct {
	Title           *string           `json:"title"`
	Description     *string           `json:"description"`
	AssigneeID      *string           `json:"assignee_id"`
	ActiveWeekdays  []int             `json:"active_weekdays"`
	DueTime         *TimeOfDayRequest `json:"due_time"`
	DueAt           string            `json:"due_at"`
	Points          *int              `json:"points"`
	PenaltyEnabled  *bool             `json:"penalty_enabled"`
	PenaltyPoints   *int              `json:"penalty_points"`
	ReminderOffsets []int             `json:"reminder_offsets_minutes"`
}

type TaskReviewRequest struct {
	Approve bool `json:"approve"`
}

type TaskActiveRequest struct {
	Active bool `json:"active"`
}

type RewardCreateRequest struct {
	FamilyID    string `json:"family_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CostPoints  int    `json:"cost_points"`
	IsShareable bool   `json:"is_shareable"`
}

type RewardUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CostPoints  int    `json:"cost_points"`
	IsShareable bool   `json:"is_shareable"`
	IsActive    bool   `json:"is_active"`
}

type ContributeRequest struct {
	Points int `json:"points"`
}

type RedemptionReviewRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

type PointsAdjustRequest struct {
	MemberID string `json:"member_id"`
	Delta    int    `json:"delta"`
	Reason   string `json:"reason"`
}

type AuthLoginRequest struct {
	MemberID string `json:"member_id"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
