package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchWindow() Window {
	return BuildWindow(date(2024, time.March, 15), 0, 0)
}

func batchEntity(id string, start, end time.Time) Entity {
	return Entity{ID: id, Range: TimeRange{Start: &start, End: &end}, Status: StatusRunning}
}

func placementByID(t *testing.T, placements []Placement, id string) Placement {
	t.Helper()
	for _, p := range placements {
		if p.EntityID == id {
			return p
		}
	}
	t.Fatalf("no placement for %s", id)
	return Placement{}
}

func TestLayoutPacksOverlapsOntoSeparateRows(t *testing.T) {
	entities := []Entity{
		batchEntity("b1", date(2024, time.March, 1), date(2024, time.March, 5)),
		batchEntity("b2", date(2024, time.March, 3), date(2024, time.March, 8)),
		batchEntity("b3", date(2024, time.March, 6), date(2024, time.March, 10)),
	}

	placements := Layout(entities, marchWindow())
	require.Len(t, placements, 3)

	p1 := placementByID(t, placements, "b1")
	p2 := placementByID(t, placements, "b2")
	p3 := placementByID(t, placements, "b3")

	assert.Equal(t, 1, p1.ColumnStart)
	assert.Equal(t, 6, p1.ColumnEnd)
	assert.Equal(t, 0, p1.Row)

	// b2 overlaps b1, so it moves down a row.
	assert.Equal(t, 3, p2.ColumnStart)
	assert.Equal(t, 9, p2.ColumnEnd)
	assert.Equal(t, 1, p2.Row)

	// b3 starts the day after b1 ends and shares row 0.
	assert.Equal(t, 6, p3.ColumnStart)
	assert.Equal(t, 11, p3.ColumnEnd)
	assert.Equal(t, 0, p3.Row)
}

func TestLayoutNoRowCollisions(t *testing.T) {
	entities := []Entity{
		batchEntity("a", date(2024, time.March, 1), date(2024, time.March, 20)),
		batchEntity("b", date(2024, time.March, 2), date(2024, time.March, 12)),
		batchEntity("c", date(2024, time.March, 5), date(2024, time.March, 25)),
		batchEntity("d", date(2024, time.March, 13), date(2024, time.March, 18)),
		batchEntity("e", date(2024, time.March, 21), date(2024, time.March, 31)),
		batchEntity("f", date(2024, time.March, 26), date(2024, time.March, 30)),
	}

	placements := Layout(entities, marchWindow())
	for i, p := range placements {
		require.True(t, p.Visible)
		assert.Greater(t, p.ColumnEnd, p.ColumnStart)
		for _, q := range placements[i+1:] {
			if p.Row != q.Row {
				continue
			}
			overlap := p.ColumnStart < q.ColumnEnd && q.ColumnStart < p.ColumnEnd
			assert.False(t, overlap, "%s and %s collide on row %d", p.EntityID, q.EntityID, p.Row)
		}
	}
}

func TestLayoutClipsToWindow(t *testing.T) {
	window := marchWindow()
	entities := []Entity{
		batchEntity("early", date(2024, time.February, 20), date(2024, time.March, 10)),
		batchEntity("late", date(2024, time.March, 20), date(2024, time.April, 20)),
		batchEntity("gone", date(2024, time.January, 1), date(2024, time.January, 31)),
	}

	placements := Layout(entities, window)

	early := placementByID(t, placements, "early")
	assert.True(t, early.Visible)
	assert.True(t, early.ClippedStart)
	assert.False(t, early.ClippedEnd)
	assert.Equal(t, 1, early.ColumnStart)
	assert.Equal(t, 11, early.ColumnEnd)

	late := placementByID(t, placements, "late")
	assert.True(t, late.Visible)
	assert.False(t, late.ClippedStart)
	assert.True(t, late.ClippedEnd)
	assert.Equal(t, window.Days()+1, late.ColumnEnd)

	gone := placementByID(t, placements, "gone")
	assert.False(t, gone.Visible)
}

func TestLayoutExcludesUnboundedRanges(t *testing.T) {
	start := date(2024, time.March, 1)
	entities := []Entity{
		{ID: "open", Range: TimeRange{Start: &start}, Status: StatusRunning},
		{ID: "none", Status: StatusPlanning},
	}

	placements := Layout(entities, marchWindow())
	assert.False(t, placementByID(t, placements, "open").Visible)
	assert.False(t, placementByID(t, placements, "none").Visible)
}

func TestLayoutDeterministicTieBreak(t *testing.T) {
	entities := []Entity{
		batchEntity("z", date(2024, time.March, 1), date(2024, time.March, 10)),
		batchEntity("a", date(2024, time.March, 1), date(2024, time.March, 10)),
	}

	first := Layout(entities, marchWindow())
	second := Layout([]Entity{entities[1], entities[0]}, marchWindow())

	// Same column start: lower id wins row 0 regardless of input order.
	assert.Equal(t, 0, placementByID(t, first, "a").Row)
	assert.Equal(t, 1, placementByID(t, first, "z").Row)
	assert.Equal(t, first, second)
}

func TestLayoutByUnitSegmentsAcrossMonths(t *testing.T) {
	window := BuildWindow(date(2024, time.March, 15), 0, 1)
	entities := []Entity{
		batchEntity("span", date(2024, time.March, 25), date(2024, time.April, 5)),
	}

	placements := LayoutByUnit(entities, window)
	require.Len(t, placements, 2)

	march := placements[0]
	assert.Equal(t, "2024-03", march.UnitKey)
	assert.Equal(t, 25, march.ColumnStart)
	assert.Equal(t, 32, march.ColumnEnd)
	assert.False(t, march.ClippedStart)
	assert.True(t, march.ClippedEnd)

	april := placements[1]
	assert.Equal(t, "2024-04", april.UnitKey)
	assert.Equal(t, 1, april.ColumnStart)
	assert.Equal(t, 6, april.ColumnEnd)
	assert.True(t, april.ClippedStart)
	assert.False(t, april.ClippedEnd)
}
