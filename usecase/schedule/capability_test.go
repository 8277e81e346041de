package schedule

import (
	"reflect"
	"testing"

	"github.com/choreboard/backend/domain"
)

func TestSupportsPenalty(t *testing.T) {
	cases := []struct {
		kind domain.RecurrenceKind
		mode domain.DueMode
		want bool
	}{
		{domain.RecurrenceDaily, domain.DueModeExact, true},
		{domain.RecurrenceDaily, domain.DueModeFlexible, true},
		{domain.RecurrenceWeekly, domain.DueModeExact, true},
		{domain.RecurrenceWeekly, domain.DueModeFlexible, false},
		{domain.RecurrenceMonthly, domain.DueModeExact, false},
		{domain.RecurrenceNone, domain.DueModeExact, false},
	}
	for _, tc := range cases {
		if got := SupportsPenalty(tc.kind, tc.mode); got != tc.want {
			t.Errorf("SupportsPenalty(%s, %s) = %v, want %v", tc.kind, tc.mode, got, tc.want)
		}
	}
}

func TestAllowedReminderOffsets(t *testing.T) {
	if got := AllowedReminderOffsets(domain.RecurrenceDaily, domain.DueModeExact); !reflect.DeepEqual(got, []int{15, 30, 60, 120}) {
		t.Fatalf("daily offsets = %v", got)
	}
	if got := AllowedReminderOffsets(domain.RecurrenceWeekly, domain.DueModeExact); !reflect.DeepEqual(got, []int{15, 30, 60, 120, 1440, 2880}) {
		t.Fatalf("weekly-exact offsets = %v", got)
	}
	if got := AllowedReminderOffsets(domain.RecurrenceWeekly, domain.DueModeFlexible); got != nil {
		t.Fatalf("weekly-flexible offsets = %v, want none", got)
	}
	if got := AllowedReminderOffsets(domain.RecurrenceMonthly, domain.DueModeExact); !reflect.DeepEqual(got, []int{15, 30, 60, 120, 1440, 2880}) {
		t.Fatalf("monthly offsets = %v", got)
	}
}

func TestValidateReminderOffsets(t *testing.T) {
	cases := []struct {
		name    string
		offsets []int
		kind    domain.RecurrenceKind
		mode    domain.DueMode
		want    bool
	}{
		{"empty always valid", nil, domain.RecurrenceWeekly, domain.DueModeFlexible, true},
		{"daily subset", []int{15, 120}, domain.RecurrenceDaily, domain.DueModeExact, true},
		{"day-scale offset rejected for daily", []int{1440}, domain.RecurrenceDaily, domain.DueModeExact, false},
		{"day-scale offset ok for weekly exact", []int{1440, 2880}, domain.RecurrenceWeekly, domain.DueModeExact, true},
		{"any offset rejected for weekly flexible", []int{15}, domain.RecurrenceWeekly, domain.DueModeFlexible, false},
		{"unknown offset rejected", []int{45}, domain.RecurrenceMonthly, domain.DueModeExact, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateReminderOffsets(tc.offsets, tc.kind, tc.mode); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
