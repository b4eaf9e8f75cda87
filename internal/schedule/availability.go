package schedule

import (
	"sort"
	"time"
)

// DefaultMaxConcurrent applies when a teacher has no declared concurrent
// batch limit.
const DefaultMaxConcurrent = 2

// TeacherProfile is the declared capability set for one teacher, immutable
// per scoring pass.
type TeacherProfile struct {
	ID            string
	Name          string
	SkillLevels   []string
	TimeSlots     []Slot
	MaxConcurrent int
	Active        bool
}

// maxConcurrent resolves the declared limit, falling back to the default.
func (t TeacherProfile) maxConcurrent() int {
	if t.MaxConcurrent > 0 {
		return t.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

func (t TeacherProfile) declares(slot Slot) bool {
	for _, s := range t.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (t TeacherProfile) teaches(level string) bool {
	for _, l := range t.SkillLevels {
		if l == level {
			return true
		}
	}
	return false
}

// SlotState reports occupancy of a single declared slot.
type SlotState struct {
	Free       bool   `json:"free"`
	OccupiedBy string `json:"occupied_by,omitempty"`
}

// CapacityStatus classifies a teacher's remaining headroom on a date.
type CapacityStatus string

const (
	CapacityAvailable CapacityStatus = "AVAILABLE"
	CapacityPartial   CapacityStatus = "PARTIAL"
	CapacityFull      CapacityStatus = "FULL"
)

// Availability is a date-scoped snapshot of a teacher's slot occupancy and
// load. It is recomputed per query and never cached across dates.
type Availability struct {
	TeacherID   string             `json:"teacher_id"`
	SlotStatus  map[Slot]SlotState `json:"slot_status"`
	CurrentLoad int                `json:"current_load"`
	Capacity    CapacityStatus     `json:"capacity"`
}

// activeFor returns the teacher's batches that occupy the given date:
// non-terminal status and a range containing the date. Malformed ranges
// (inverted bounds) are skipped rather than faulting. The result is sorted
// by entity id so downstream choices are deterministic.
func activeFor(teacherID string, entities []Entity, date time.Time) []Entity {
	var active []Entity
	for _, e := range entities {
		if e.TeacherID != teacherID || e.Status.Terminal() {
			continue
		}
		if !e.Range.Contains(date) {
			continue
		}
		active = append(active, e)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active
}

// occupiedSlots maps each classified slot to the lowest-id occupying entity.
// Unclassified tags occupy nothing.
func occupiedSlots(active []Entity) map[Slot]string {
	occupied := make(map[Slot]string)
	for _, e := range active {
		slot, ok := ParseSlot(e.SlotTag)
		if !ok {
			continue
		}
		if _, taken := occupied[slot]; !taken {
			occupied[slot] = e.ID
		}
	}
	return occupied
}

// ComputeAvailability derives the teacher's slot occupancy, current load and
// capacity classification for the given date. A deactivated teacher or one
// with no declared slots always reports Full.
func ComputeAvailability(teacher TeacherProfile, entities []Entity, date time.Time) Availability {
	active := activeFor(teacher.ID, entities, date)
	occupied := occupiedSlots(active)

	slotStatus := make(map[Slot]SlotState, len(teacher.TimeSlots))
	for _, slot := range slotOrder {
		if !teacher.declares(slot) {
			continue
		}
		occupant, taken := occupied[slot]
		slotStatus[slot] = SlotState{Free: !taken && teacher.Active, OccupiedBy: occupant}
	}

	load := len(active)
	capacity := CapacityPartial
	switch {
	case !teacher.Active:
		capacity = CapacityFull
	case len(teacher.TimeSlots) == 0:
		capacity = CapacityFull
	case load >= teacher.maxConcurrent():
		capacity = CapacityFull
	case load == 0:
		capacity = CapacityAvailable
	}

	return Availability{
		TeacherID:   teacher.ID,
		SlotStatus:  slotStatus,
		CurrentLoad: load,
		Capacity:    capacity,
	}
}
