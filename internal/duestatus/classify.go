// Package duestatus classifies a bill's due date into an attention status.
//
// Every view that colors or sorts bills by urgency goes through Classify.
package duestatus

import (
	"math"
	"time"
)

// Status is the urgency classification of a bill.
type Status string

const (
	Overdue  Status = "overdue"
	DueSoon  Status = "due_soon"
	Upcoming Status = "upcoming"
	Paid     Status = "paid"
)

// DefaultWindowDays is the default due-soon window. Callers that want the
// tighter dashboard view pass their own window; the value is configuration,
// never a per-call-site constant.
const DefaultWindowDays = 7

// Classify maps a due date and paid flag to a Status relative to now.
//
// A paid bill is Paid regardless of date. Otherwise the calendar-day
// difference decides: negative is Overdue, 0..windowDays inclusive is
// DueSoon, anything later is Upcoming. Both dates are truncated to local
// midnight before differencing so a bill due "today" classifies the same
// at 09:00 and at 23:00.
func Classify(dueDate time.Time, paid bool, now time.Time, windowDays int) Status {
	if paid {
		return Paid
	}
	diff := DaysUntil(dueDate, now)
	switch {
	case diff < 0:
		return Overdue
	case diff <= windowDays:
		return DueSoon
	default:
		return Upcoming
	}
}

// DaysUntil returns the whole calendar days from now to dueDate, after
// truncating both to midnight. Negative when the due date has passed.
// Rounding absorbs the 23h/25h days around DST transitions.
func DaysUntil(dueDate, now time.Time) int {
	due := atMidnight(dueDate)
	ref := atMidnight(now)
	return int(math.Round(due.Sub(ref).Hours() / 24))
}

func atMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
