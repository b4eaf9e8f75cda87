package models

import "time"

// Batch statuses. Completed and cancelled batches no longer occupy a
// teacher's slots.
const (
	BatchStatusPlanning  = "PLANNING"
	BatchStatusFilling   = "FILLING"
	BatchStatusRunning   = "RUNNING"
	BatchStatusCompleted = "COMPLETED"
	BatchStatusCancelled = "CANCELLED"
)

// Batch represents a scheduled course offering: a time range, a capacity,
// an optional assigned teacher and a level.
type Batch struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	TeacherID     *string    `db:"teacher_id" json:"teacher_id,omitempty"`
	Level         string     `db:"level" json:"level"`
	TimeSlot      *string    `db:"time_slot" json:"time_slot,omitempty"`
	StartDate     *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status        string     `db:"status" json:"status"`
	EnrolledCount int        `db:"enrolled_count" json:"enrolled_count"`
	TotalSeats    int        `db:"total_seats" json:"total_seats"`
	ScheduleText  *string    `db:"schedule_text" json:"schedule_text,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// BatchFilter describes query params for listing batches.
type BatchFilter struct {
	TeacherID string
	Level     string
	Status    string
	TimeSlot  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
