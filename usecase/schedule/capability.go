package schedule

import "github.com/choreboard/backend/domain"

// Reminder offsets in minutes before the due time. Daily tasks recur every
// few hours of slack at most, so day-scale offsets are restricted to other
// fixed-deadline kinds.
var (
	dailyReminderOffsets = []int{15, 30, 60, 120}
	allReminderOffsets   = []int{15, 30, 60, 120, 1440, 2880}
)

// SupportsPenalty reports whether a recurrence/due-mode combination may
// carry missed-deadline penalty points. Only kinds with an exact per-
// occurrence deadline qualify.
func SupportsPenalty(kind domain.RecurrenceKind, mode domain.DueMode) bool {
	switch kind {
	case domain.RecurrenceDaily:
		return true
	case domain.RecurrenceWeekly:
		return mode == domain.DueModeExact
	default:
		return false
	}
}

// AllowedReminderOffsets returns the selectable reminder offsets for a
// recurrence/due-mode combination. Weekly tasks in flexible mode have no
// fixed due time, so no reminders apply.
func AllowedReminderOffsets(kind domain.RecurrenceKind, mode domain.DueMode) []int {
	if kind == domain.RecurrenceWeekly && mode == domain.DueModeFlexible {
		return nil
	}
	if kind == domain.RecurrenceDaily {
		return append([]int(nil), dailyReminderOffsets...)
	}
	return append([]int(nil), allReminderOffsets...)
}

// ValidateReminderOffsets reports whether every offset is allowed for the
// given combination.
func ValidateReminderOffsets(offsets []int, kind domain.RecurrenceKind, mode domain.DueMode) bool {
	allowed := AllowedReminderOffsets(kind, mode)
	if len(offsets) == 0 {
		return true
	}
	if len(allowed) == 0 {
		return false
	}
	set := make(map[int]bool, len(allowed))
	for _, offset := range allowed {
		set[offset] = true
	}
	for _, offset := range offsets {
		if !set[offset] {
			return false
		}
	}
	return true
}
