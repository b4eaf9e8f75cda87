package schedule

import (
	"math"
	"time"
)

// Progress returns how far through its range an entity is, in percent.
// Before the start it is 0, past the end it is 100, and a zero-length range
// jumps straight to 100 once reached. Ranges missing a bound report 0.
func Progress(r TimeRange, now time.Time) float64 {
	if r.Start == nil || r.End == nil {
		return 0
	}
	start := Day(*r.Start)
	end := Day(*r.End)
	if start.After(end) {
		return 0
	}
	n := Day(now)
	if n.Before(start) {
		return 0
	}
	if start.Equal(end) {
		return 100
	}
	if n.After(end) {
		return 100
	}
	elapsed := n.Sub(start).Hours()
	span := end.Sub(start).Hours()
	return 100 * elapsed / span
}

// DaysRemaining returns the whole days left until the range ends, never
// negative. An open-ended range reports 0 because there is nothing to count
// down to.
func DaysRemaining(r TimeRange, now time.Time) int {
	if r.End == nil {
		return 0
	}
	diff := Day(*r.End).Sub(Day(now)).Hours() / 24
	days := int(math.Ceil(diff))
	if days < 0 {
		return 0
	}
	return days
}

// ColorWeight maps a progress percentage onto the fade factor renderers use
// to dim batches as they age: 1.0 when fresh, 0.1 at completion.
func ColorWeight(progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return 1 - 0.9*progress/100
}
