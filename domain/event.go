package domain

import (
	"encoding/json"
	"time"
)

// LiveEvent is a change notification for polling clients. Events are
// buffered in the local journal first and flushed to the store by a
// background drainer.
type LiveEvent struct {
	ID        string          `json:"id"`
	FamilyID  string          `json:"family_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Well-known event types emitted by the usecases.
const (
	EventTaskCreated         = "task.created"
	EventTaskUpdated         = "task.updated"
	EventTaskSubmitted       = "task.submitted"
	EventTaskReviewed        = "task.reviewed"
	EventTaskDeleted         = "task.deleted"
	EventTaskPenalty         = "task.penalty_applied"
	EventRewardCreated       = "reward.created"
	EventRewardUpdated       = "reward.updated"
	EventRewardDeleted       = "reward.deleted"
	EventContributionUpdated = "reward.contribution.updated"
	EventRedeemRequested     = "reward.redeem_requested"
	EventRedeemReviewed      = "reward.redeem_reviewed"
	EventPointsAdjusted      = "points.adjusted"
)
