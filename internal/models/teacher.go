package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher represents an instructor record with declared capabilities.
type Teacher struct {
	ID            string         `db:"id" json:"id"`
	Email         string         `db:"email" json:"email"`
	FullName      string         `db:"full_name" json:"full_name"`
	Phone         *string        `db:"phone" json:"phone,omitempty"`
	SkillLevels   pq.StringArray `db:"skill_levels" json:"skill_levels"`
	TimeSlots     pq.StringArray `db:"time_slots" json:"time_slots"`
	MaxConcurrent int            `db:"max_concurrent" json:"max_concurrent"`
	Active        bool           `db:"active" json:"active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Level     string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
