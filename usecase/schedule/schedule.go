// Package schedule computes occurrence timestamps for recurring tasks.
// All functions are pure: the reference time is always an explicit
// argument, never read from the wall clock.
package schedule

import (
	"time"

	"github.com/choreboard/backend/domain"
)

// Weekday numbering is Monday=0 .. Sunday=6 throughout, independent of
// time.Weekday's Sunday-based numbering.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// dailyHorizonDays bounds the candidate scan. Any non-empty weekday subset
// recurs within 7 days, so 14 guarantees coverage.
const dailyHorizonDays = 14

// alignMaxSteps bounds due-date realignment for long-dormant tasks.
const alignMaxSteps = 370

// TimeOfDay is a wall-clock due time.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) IsValid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// WeekdayIndex maps a timestamp to the Monday=0 numbering.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// NextDailyOccurrence returns the first timestamp strictly after now that
// falls on an allowed weekday at the given time of day. It scans a 14-day
// horizon and returns ErrUnschedulable when the inputs are structurally
// invalid or no candidate exists.
func NextDailyOccurrence(tod TimeOfDay, allowedWeekdays []int, now time.Time) (time.Time, error) {
	if !tod.IsValid() {
		return time.Time{}, domain.ErrUnschedulable
	}
	allowed := weekdaySet(allowedWeekdays)
	if len(allowed) == 0 {
		return time.Time{}, domain.ErrUnschedulable
	}

	year, month, day := now.Date()
	for offset := 0; offset < dailyHorizonDays; offset++ {
		candidate := time.Date(year, month, day+offset, tod.Hour, tod.Minute, 0, 0, now.Location())
		if !allowed[WeekdayIndex(candidate)] {
			continue
		}
		if !candidate.After(now) {
			continue
		}
		return candidate, nil
	}
	return time.Time{}, domain.ErrUnschedulable
}

// NextWeeklyOccurrence returns the next timestamp on the target weekday at
// the given time of day, strictly after now. Given valid inputs the result
// always lies in (now, now+7d].
func NextWeeklyOccurrence(targetWeekday int, tod TimeOfDay, now time.Time) (time.Time, error) {
	if targetWeekday < Monday || targetWeekday > Sunday || !tod.IsValid() {
		return time.Time{}, domain.ErrUnschedulable
	}

	year, month, day := now.Date()
	candidate := time.Date(year, month, day, tod.Hour, tod.Minute, 0, 0, now.Location())

	delta := (targetWeekday - WeekdayIndex(now) + 7) % 7
	candidate = candidate.AddDate(0, 0, delta)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, nil
}

// NextOccurrenceAfter computes the due timestamp for the follow-up
// occurrence spawned when a recurring task is approved. The base is the
// previous due date, or now when none was set. Returns nil for one-off
// tasks.
func NextOccurrenceAfter(dueAt *time.Time, kind domain.RecurrenceKind, activeWeekdays []int, now time.Time) *time.Time {
	base := now
	if dueAt != nil {
		base = *dueAt
	}

	switch kind {
	case domain.RecurrenceDaily:
		allowed := weekdaySet(activeWeekdays)
		if len(allowed) == 0 {
			allowed = weekdaySet([]int{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday})
		}
		candidate := base.AddDate(0, 0, 1)
		for i := 0; i < dailyHorizonDays; i++ {
			if allowed[WeekdayIndex(candidate)] {
				return &candidate
			}
			candidate = candidate.AddDate(0, 0, 1)
		}
		return &candidate
	case domain.RecurrenceWeekly:
		next := base.AddDate(0, 0, 7)
		return &next
	case domain.RecurrenceMonthly:
		next := addMonths(base, 1)
		return &next
	default:
		return nil
	}
}

// AlignDue advances a stale due date of an active recurring task until it
// lies in the future. Used when a task is (re)activated or edited after
// lying dormant. One-off tasks and nil due dates pass through unchanged.
func AlignDue(dueAt *time.Time, kind domain.RecurrenceKind, activeWeekdays []int, now time.Time) *time.Time {
	if dueAt == nil || kind == domain.RecurrenceNone {
		return dueAt
	}

	candidate := *dueAt
	for i := 0; i < alignMaxSteps; i++ {
		if candidate.After(now) {
			return &candidate
		}
		next := NextOccurrenceAfter(&candidate, kind, activeWeekdays, now)
		if next == nil || next.Equal(candidate) {
			return &candidate
		}
		candidate = *next
	}
	return &candidate
}

// addMonths shifts by whole months, clamping the day for shorter months
// (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, months int) time.Time {
	monthIndex := int(t.Month()) - 1 + months
	year := t.Year() + monthIndex/12
	month := time.Month(monthIndex%12 + 1)

	day := t.Day()
	if max := daysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func weekdaySet(weekdays []int) map[int]bool {
	set := make(map[int]bool, len(weekdays))
	for _, d := range weekdays {
		if d >= Monday && d <= Sunday {
			set[d] = true
		}
	}
	return set
}
