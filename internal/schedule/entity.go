package schedule

// Status is the business lifecycle stage of a batch.
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusFilling   Status = "FILLING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether the status excludes the batch from occupancy
// and scoring.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Entity is the engine's view of a batch: identity, time range, capacity and
// classification. The engine never mutates entities, it only derives values.
type Entity struct {
	ID        string
	TeacherID string
	Level     string
	SlotTag   string
	Range     TimeRange
	Status    Status
	Enrolled  int
	Seats     int
}

// Slot is a coarse time-of-day category a teacher opts into and a batch
// occupies.
type Slot string

const (
	SlotMorning Slot = "MORNING"
	SlotEvening Slot = "EVENING"
)

// slotOrder fixes enumeration order so suggestion output is reproducible.
var slotOrder = []Slot{SlotMorning, SlotEvening}

// ParseSlot maps a stored slot tag onto a Slot. Empty or unknown tags are
// unclassified: they occupy neither slot rather than being guessed from text.
func ParseSlot(tag string) (Slot, bool) {
	switch Slot(tag) {
	case SlotMorning:
		return SlotMorning, true
	case SlotEvening:
		return SlotEvening, true
	default:
		return "", false
	}
}
