package schedule

import "time"

// TimeRange bounds an entity in time. A nil bound leaves that side open;
// layout requires both bounds, availability treats open sides as unbounded.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether both bounds are present and correctly ordered.
func (r TimeRange) Bounded() bool {
	if r.Start == nil || r.End == nil {
		return false
	}
	return !Day(*r.Start).After(Day(*r.End))
}

// Contains reports whether the day-precision date falls inside the range.
// An ongoing batch without an end date still contains today.
func (r TimeRange) Contains(date time.Time) bool {
	if r.Start != nil && r.End != nil && Day(*r.Start).After(Day(*r.End)) {
		return false
	}
	d := Day(date)
	if r.Start != nil && d.Before(Day(*r.Start)) {
		return false
	}
	if r.End != nil && d.After(Day(*r.End)) {
		return false
	}
	return true
}

// Unit is a single month column inside a Window.
type Unit struct {
	Key      string    `json:"key"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DayCount int       `json:"day_count"`
}

// Window is the bounded calendar range layout and suggestions operate on.
// Units are contiguous whole months covering exactly [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Units []Unit    `json:"units"`
}

// Days returns the total day count covered by the window.
func (w Window) Days() int {
	total := 0
	for _, u := range w.Units {
		total += u.DayCount
	}
	return total
}

// Day truncates a timestamp to UTC midnight. All engine arithmetic happens
// on day-precision values; callers normalise timezones before handing dates in.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildWindow returns the rolling calendar window around the reference date:
// monthsBefore whole months back to monthsAfter whole months forward, one
// unit per month. Negative month counts clamp to zero. Output depends only
// on the reference day, never on the clock.
func BuildWindow(reference time.Time, monthsBefore, monthsAfter int) Window {
	if monthsBefore < 0 {
		monthsBefore = 0
	}
	if monthsAfter < 0 {
		monthsAfter = 0
	}

	ref := Day(reference)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -monthsBefore, 0)

	total := monthsBefore + monthsAfter + 1
	units := make([]Unit, 0, total)
	for i := 0; i < total; i++ {
		start := first.AddDate(0, i, 0)
		end := start.AddDate(0, 1, -1)
		units = append(units, Unit{
			Key:      start.Format("2006-01"),
			Start:    start,
			End:      end,
			DayCount: end.Day(),
		})
	}

	return Window{
		Start: units[0].Start,
		End:   units[len(units)-1].End,
		Units: units,
	}
}
