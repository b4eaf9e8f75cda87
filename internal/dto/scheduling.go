package dto

import (
	"time"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/schedule"
)

// MonthUnit is one month column of the calendar window.
type MonthUnit struct {
	Key      string    `json:"key"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DayCount int       `json:"day_count"`
}

// CalendarWindowResponse carries the window used to render month headers.
type CalendarWindowResponse struct {
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	TotalDays int         `json:"total_days"`
	Units     []MonthUnit `json:"units"`
}

// BatchPlacement is one batch positioned on the calendar grid, decorated
// with progress values for rendering.
type BatchPlacement struct {
	BatchID       string  `json:"batch_id"`
	Name          string  `json:"name"`
	Level         string  `json:"level"`
	Status        string  `json:"status"`
	UnitKey       string  `json:"unit_key,omitempty"`
	ColumnStart   int     `json:"column_start"`
	ColumnEnd     int     `json:"column_end"`
	Row           int     `json:"row"`
	Visible       bool    `json:"visible"`
	ClippedStart  bool    `json:"clipped_start"`
	ClippedEnd    bool    `json:"clipped_end"`
	Progress      float64 `json:"progress"`
	DaysRemaining int     `json:"days_remaining"`
	ColorWeight   float64 `json:"color_weight"`
	EnrolledCount int     `json:"enrolled_count"`
	TotalSeats    int     `json:"total_seats"`
}

// LayoutResponse bundles the window with the non-overlapping placements.
type LayoutResponse struct {
	Window     CalendarWindowResponse `json:"window"`
	Placements []BatchPlacement       `json:"placements"`
}

// TeacherAvailabilityResponse is a date-scoped availability snapshot for one
// teacher.
type TeacherAvailabilityResponse struct {
	TeacherID   string                               `json:"teacher_id"`
	TeacherName string                               `json:"teacher_name"`
	Date        string                               `json:"date"`
	SlotStatus  map[schedule.Slot]schedule.SlotState `json:"slot_status"`
	CurrentLoad int                                  `json:"current_load"`
	Capacity    schedule.CapacityStatus              `json:"capacity"`
}

// SuggestionsResponse carries ranked batch placement suggestions for a date.
type SuggestionsResponse struct {
	Date        string                `json:"date"`
	Levels      []string              `json:"levels"`
	Suggestions []schedule.Suggestion `json:"suggestions"`
}
