// Package analytics derives reporting figures from task history. The
// history keeps every occurrence of a recurring task as its own record,
// so counts operate on the raw slice without deduplication.
package analytics

import (
	"math"
	"time"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/usecase/schedule"
)

// StatusCounts tallies tasks per lifecycle status.
type StatusCounts struct {
	Open      int `json:"open"`
	Submitted int `json:"submitted"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
}

// TrendPoint is one calendar day in a completion trend, oldest first.
type TrendPoint struct {
	Date     string `json:"date"`
	Approved int    `json:"approved"`
}

// CountByStatus tallies the given tasks per status. Records with an
// unknown status are ignored rather than guessed at.
func CountByStatus(tasks []domain.Task) StatusCounts {
	var counts StatusCounts
	for _, task := range tasks {
		switch task.Status {
		case domain.TaskStatusOpen:
			counts.Open++
		case domain.TaskStatusSubmitted:
			counts.Submitted++
		case domain.TaskStatusApproved:
			counts.Approved++
		case domain.TaskStatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// CompletionRate returns the share of approved tasks as a whole
// percentage, rounded half away from zero. An empty slice yields 0.
func CompletionRate(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	approved := 0
	for _, task := range tasks {
		if task.Status == domain.TaskStatusApproved {
			approved++
		}
	}
	return int(math.Round(100 * float64(approved) / float64(len(tasks))))
}

// WeeklyTrend returns the last seven calendar days (including today),
// oldest first, with the number of tasks approved on each day. A task
// counts on the day of its activity timestamp in now's location.
func WeeklyTrend(tasks []domain.Task, now time.Time) []TrendPoint {
	approvedPerDay := make(map[string]int)
	for _, task := range tasks {
		if task.Status != domain.TaskStatusApproved {
			continue
		}
		at := task.ActivityTime()
		if at.IsZero() {
			continue
		}
		approvedPerDay[at.In(now.Location()).Format("2006-01-02")]++
	}

	year, month, day := now.Date()
	points := make([]TrendPoint, 0, 7)
	for offset := -6; offset <= 0; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		points = append(points, TrendPoint{Date: date, Approved: approvedPerDay[date]})
	}
	return points
}

// WeekRange returns the half-open interval [Monday 00:00, next Monday
// 00:00) of the week containing now, in now's location.
func WeekRange(now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	start := time.Date(year, month, day-schedule.WeekdayIndex(now), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 7)
}

// MemberWeekCounts tallies approvals per assignee within [from, to).
func MemberWeekCounts(tasks []domain.Task, from, to time.Time) map[string]int {
	counts := make(map[string]int)
	for _, task := range tasks {
		if task.Status != domain.TaskStatusApproved || task.AssigneeID == "" {
			continue
		}
		at := task.ActivityTime()
		if at.Before(from) || !at.Before(to) {
			continue
		}
		counts[task.AssigneeID]++
	}
	return counts
}
