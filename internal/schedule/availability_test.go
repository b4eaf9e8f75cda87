package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func morningTeacher() TeacherProfile {
	return TeacherProfile{
		ID:            "t1",
		Name:          "Anna",
		SkillLevels:   []string{"A1", "A2"},
		TimeSlots:     []Slot{SlotMorning},
		MaxConcurrent: 3,
		Active:        true,
	}
}

func activeBatch(id, teacherID, slotTag string) Entity {
	return Entity{
		ID:        id,
		TeacherID: teacherID,
		Level:     "A1",
		SlotTag:   slotTag,
		Range:     TimeRange{Start: datePtr(2024, time.March, 1), End: datePtr(2024, time.April, 30)},
		Status:    StatusRunning,
	}
}

func TestAvailabilityMorningOccupied(t *testing.T) {
	teacher := morningTeacher()
	entities := []Entity{activeBatch("b1", "t1", "MORNING")}

	avail := ComputeAvailability(teacher, entities, date(2024, time.March, 15))

	require.Contains(t, avail.SlotStatus, SlotMorning)
	assert.False(t, avail.SlotStatus[SlotMorning].Free)
	assert.Equal(t, "b1", avail.SlotStatus[SlotMorning].OccupiedBy)
	assert.NotContains(t, avail.SlotStatus, SlotEvening)
	assert.Equal(t, 1, avail.CurrentLoad)
	assert.Equal(t, CapacityPartial, avail.Capacity)
}

func TestAvailabilityPartialWithFreeSlot(t *testing.T) {
	teacher := morningTeacher()
	teacher.TimeSlots = []Slot{SlotMorning, SlotEvening}
	entities := []Entity{activeBatch("b1", "t1", "MORNING")}

	avail := ComputeAvailability(teacher, entities, date(2024, time.March, 15))

	assert.False(t, avail.SlotStatus[SlotMorning].Free)
	assert.True(t, avail.SlotStatus[SlotEvening].Free)
	assert.Equal(t, 1, avail.CurrentLoad)
	assert.Equal(t, CapacityPartial, avail.Capacity)
}

func TestAvailabilityNoBatches(t *testing.T) {
	avail := ComputeAvailability(morningTeacher(), nil, date(2024, time.March, 15))

	assert.True(t, avail.SlotStatus[SlotMorning].Free)
	assert.Equal(t, 0, avail.CurrentLoad)
	assert.Equal(t, CapacityAvailable, avail.Capacity)
}

func TestAvailabilityDeactivatedTeacherIsFull(t *testing.T) {
	teacher := morningTeacher()
	teacher.Active = false

	avail := ComputeAvailability(teacher, nil, date(2024, time.March, 15))

	assert.Equal(t, CapacityFull, avail.Capacity)
	assert.False(t, avail.SlotStatus[SlotMorning].Free)
}

func TestAvailabilityNoDeclaredSlotsIsFull(t *testing.T) {
	teacher := morningTeacher()
	teacher.TimeSlots = nil

	avail := ComputeAvailability(teacher, nil, date(2024, time.March, 15))
	assert.Equal(t, CapacityFull, avail.Capacity)
	assert.Empty(t, avail.SlotStatus)
}

func TestAvailabilityMaxConcurrentReached(t *testing.T) {
	teacher := morningTeacher()
	teacher.TimeSlots = []Slot{SlotMorning, SlotEvening}
	teacher.MaxConcurrent = 2
	entities := []Entity{
		activeBatch("b1", "t1", "MORNING"),
		activeBatch("b2", "t1", ""),
	}

	avail := ComputeAvailability(teacher, entities, date(2024, time.March, 15))

	assert.Equal(t, 2, avail.CurrentLoad)
	assert.Equal(t, CapacityFull, avail.Capacity)
}

func TestAvailabilityIgnoresOtherTeachersAndTerminalBatches(t *testing.T) {
	teacher := morningTeacher()
	completed := activeBatch("b1", "t1", "MORNING")
	completed.Status = StatusCompleted
	other := activeBatch("b2", "t2", "MORNING")

	avail := ComputeAvailability(teacher, []Entity{completed, other}, date(2024, time.March, 15))

	assert.Equal(t, 0, avail.CurrentLoad)
	assert.True(t, avail.SlotStatus[SlotMorning].Free)
}

func TestAvailabilityUnclassifiedTagOccupiesNothing(t *testing.T) {
	teacher := morningTeacher()
	entities := []Entity{activeBatch("b1", "t1", "10:00-12:00")}

	avail := ComputeAvailability(teacher, entities, date(2024, time.March, 15))

	// Counts against load but claims no slot.
	assert.Equal(t, 1, avail.CurrentLoad)
	assert.True(t, avail.SlotStatus[SlotMorning].Free)
	assert.Equal(t, CapacityPartial, avail.Capacity)
}

func TestAvailabilityOngoingBatchWithoutEndDate(t *testing.T) {
	teacher := morningTeacher()
	entity := activeBatch("b1", "t1", "MORNING")
	entity.Range.End = nil

	avail := ComputeAvailability(teacher, []Entity{entity}, date(2030, time.January, 1))

	assert.Equal(t, 1, avail.CurrentLoad)
	assert.False(t, avail.SlotStatus[SlotMorning].Free)
}

func TestAvailabilityMalformedRangeSkipped(t *testing.T) {
	teacher := morningTeacher()
	entity := activeBatch("b1", "t1", "MORNING")
	entity.Range = TimeRange{Start: datePtr(2024, time.May, 1), End: datePtr(2024, time.March, 1)}

	avail := ComputeAvailability(teacher, []Entity{entity}, date(2024, time.April, 1))

	assert.Equal(t, 0, avail.CurrentLoad)
	assert.True(t, avail.SlotStatus[SlotMorning].Free)
}
