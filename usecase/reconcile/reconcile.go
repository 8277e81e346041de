// Package reconcile collapses task occurrence history into the records a
// user should see. The store keeps every occurrence of a recurring task as
// its own row for audit purposes; only the most recently touched one per
// identity is "live".
package reconcile

import (
	"strings"

	"github.com/choreboard/backend/domain"
)

// IdentityKey identifies the same recurring task across its history of
// occurrences.
type IdentityKey struct {
	AssigneeID     string
	Title          string
	Description    string
	RecurrenceKind domain.RecurrenceKind
	TemplateID     string
}

// KeyFor returns the identity key for a recurring task, or false for a
// one-off record.
func KeyFor(task *domain.Task) (IdentityKey, bool) {
	if !task.IsRecurring() {
		return IdentityKey{}, false
	}
	return IdentityKey{
		AssigneeID:     task.AssigneeID,
		Title:          task.Title,
		Description:    task.Description,
		RecurrenceKind: task.RecurrenceKind,
		TemplateID:     task.TemplateID,
	}, true
}

func (k IdentityKey) String() string {
	return strings.Join([]string{k.AssigneeID, k.Title, k.Description, string(k.RecurrenceKind), k.TemplateID}, "|")
}

// LatestOccurrences returns every one-off record unchanged and in original
// order, followed by exactly one representative per recurring identity in
// first-seen order. Within a group the record with the latest activity
// timestamp wins; an exact tie is won by the record appearing later in the
// input.
func LatestOccurrences(tasks []domain.Task) []domain.Task {
	oneOffs := make([]domain.Task, 0, len(tasks))
	keyOrder := make([]IdentityKey, 0)
	latest := make(map[IdentityKey]domain.Task)

	for _, task := range tasks {
		key, ok := KeyFor(&task)
		if !ok {
			oneOffs = append(oneOffs, task)
			continue
		}
		current, seen := latest[key]
		if !seen {
			keyOrder = append(keyOrder, key)
			latest[key] = task
			continue
		}
		if !task.ActivityTime().Before(current.ActivityTime()) {
			latest[key] = task
		}
	}

	out := oneOffs
	for _, key := range keyOrder {
		out = append(out, latest[key])
	}
	return out
}
