// Package booking holds the pure availability-filtering logic for the
// session booking list.
package booking

import (
	"strconv"
	"strings"

	"academy-backend/models"
)

// Time-of-day buckets, by slot start hour.
const (
	BucketMorning   = "morning"   // [6,12)
	BucketAfternoon = "afternoon" // [12,17)
	BucketEvening   = "evening"   // [17,22)
)

// Filters is a conjunction of optional criteria. Zero values mean "any".
type Filters struct {
	CoachID  string
	BranchID string
	Date     string // exact session date, YYYY-MM-DD
	Time     string // a bucket name or an exact HH:MM start time
	Query    string // free-text, matched against coach name, specialization, branch name
}

// Apply returns the slots matching every set filter. The input is not
// modified and the result preserves input order.
func Apply(slots []models.SessionSlot, f Filters) []models.SessionSlot {
	filtered := make([]models.SessionSlot, 0, len(slots))
	for _, slot := range slots {
		if Matches(slot, f) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// Matches reports whether a single slot passes every set filter.
func Matches(slot models.SessionSlot, f Filters) bool {
	if f.CoachID != "" && slot.CoachID != f.CoachID {
		return false
	}
	if f.BranchID != "" && slot.BranchID != f.BranchID {
		return false
	}
	if f.Date != "" && slot.SessionDate != f.Date {
		return false
	}
	if f.Time != "" && !matchesTime(slot.StartTime, f.Time) {
		return false
	}
	if f.Query != "" && !matchesQuery(slot, f.Query) {
		return false
	}
	return true
}

func matchesTime(startTime, filter string) bool {
	switch filter {
	case BucketMorning:
		h := startHour(startTime)
		return h >= 6 && h < 12
	case BucketAfternoon:
		h := startHour(startTime)
		return h >= 12 && h < 17
	case BucketEvening:
		h := startHour(startTime)
		return h >= 17 && h < 22
	default:
		// An exact start time, e.g. "09:00".
		return startTime == filter
	}
}

// matchesQuery is an OR across the denormalized display fields,
// case-insensitive.
func matchesQuery(slot models.SessionSlot, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(slot.CoachName), q) ||
		strings.Contains(strings.ToLower(slot.CoachSpecialization), q) ||
		strings.Contains(strings.ToLower(slot.BranchName), q)
}

func startHour(startTime string) int {
	hh, _, ok := strings.Cut(startTime, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return -1
	}
	return h
}
