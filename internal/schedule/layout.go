package schedule

import (
	"sort"
	"time"
)

// Placement is the computed grid position for one entity. Columns are
// 1-indexed day offsets from the window (or unit) start; ColumnEnd is
// exclusive, one day past the last occupied column. Entities sharing a row
// never have intersecting [ColumnStart, ColumnEnd) intervals.
type Placement struct {
	EntityID     string `json:"entity_id"`
	UnitKey      string `json:"unit_key,omitempty"`
	ColumnStart  int    `json:"column_start"`
	ColumnEnd    int    `json:"column_end"`
	Row          int    `json:"row"`
	Visible      bool   `json:"visible"`
	ClippedStart bool   `json:"clipped_start"`
	ClippedEnd   bool   `json:"clipped_end"`
}

type span struct {
	start int // inclusive column
	end   int // exclusive column
}

func (s span) intersects(other span) bool {
	return s.start < other.end && other.start < s.end
}

// Layout places entities on the window grid without visual collisions.
// Entities missing a bound, with inverted bounds, or falling entirely outside
// the window come back with Visible=false; everything else gets a column span
// and the first row whose existing spans it does not intersect. Packing order
// is column start ascending then entity id ascending, so output is
// deterministic for identical input.
func Layout(entities []Entity, window Window) []Placement {
	visible := make([]Placement, 0, len(entities))
	hidden := make([]Placement, 0)

	for _, e := range entities {
		p, ok := clip(e, window.Start, window.End, "")
		if !ok {
			hidden = append(hidden, p)
			continue
		}
		visible = append(visible, p)
	}

	packRows(visible)
	return append(visible, hidden...)
}

// LayoutByUnit segments entities into one placement per month unit they
// intersect, packing rows independently inside each unit. Row continuity
// across units is not guaranteed; a multi-month batch may shift rows between
// months.
func LayoutByUnit(entities []Entity, window Window) []Placement {
	placements := make([]Placement, 0, len(entities))

	for _, unit := range window.Units {
		segment := make([]Placement, 0)
		for _, e := range entities {
			p, ok := clip(e, unit.Start, unit.End, unit.Key)
			if !ok {
				continue
			}
			segment = append(segment, p)
		}
		packRows(segment)
		placements = append(placements, segment...)
	}

	for _, e := range entities {
		if !e.Range.Bounded() {
			placements = append(placements, Placement{EntityID: e.ID})
		}
	}
	return placements
}

// clip intersects the entity range with [gridStart, gridEnd] and maps it to
// 1-indexed columns relative to gridStart. ok is false when the entity is
// unbounded or misses the grid entirely.
func clip(e Entity, gridStart, gridEnd time.Time, unitKey string) (Placement, bool) {
	if !e.Range.Bounded() {
		return Placement{EntityID: e.ID, UnitKey: unitKey}, false
	}
	start := Day(*e.Range.Start)
	end := Day(*e.Range.End)
	if end.Before(gridStart) || start.After(gridEnd) {
		return Placement{EntityID: e.ID, UnitKey: unitKey}, false
	}

	clippedStart := start.Before(gridStart)
	clippedEnd := end.After(gridEnd)
	if clippedStart {
		start = gridStart
	}
	if clippedEnd {
		end = gridEnd
	}

	return Placement{
		EntityID:     e.ID,
		UnitKey:      unitKey,
		ColumnStart:  dayOffset(gridStart, start) + 1,
		ColumnEnd:    dayOffset(gridStart, end) + 2,
		Visible:      true,
		ClippedStart: clippedStart,
		ClippedEnd:   clippedEnd,
	}, true
}

// packRows assigns each placement the first row whose occupied spans do not
// intersect its column span, creating rows as needed. First fit over a small
// bounded entity count keeps this O(n*r).
func packRows(placements []Placement) {
	sort.Slice(placements, func(i, j int) bool {
		if placements[i].ColumnStart != placements[j].ColumnStart {
			return placements[i].ColumnStart < placements[j].ColumnStart
		}
		return placements[i].EntityID < placements[j].EntityID
	})

	var rows [][]span
	for i := range placements {
		s := span{start: placements[i].ColumnStart, end: placements[i].ColumnEnd}
		placed := false
		for row := range rows {
			if fits(rows[row], s) {
				rows[row] = append(rows[row], s)
				placements[i].Row = row
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []span{s})
			placements[i].Row = len(rows) - 1
		}
	}
}

func fits(occupied []span, s span) bool {
	for _, o := range occupied {
		if o.intersects(s) {
			return false
		}
	}
	return true
}

func dayOffset(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
