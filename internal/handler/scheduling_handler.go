package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/dto"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/middleware"
	appErrors "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/errors"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/export"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/response"
)

type schedulingService interface {
	Window(ctx context.Context, reference time.Time, monthsBefore, monthsAfter int) dto.CalendarWindowResponse
	Layout(ctx context.Context, reference time.Time, monthsBefore, monthsAfter int, perUnit bool) (*dto.LayoutResponse, bool, error)
	TeacherAvailability(ctx context.Context, teacherID string, date time.Time) (*dto.TeacherAvailabilityResponse, error)
	RosterAvailability(ctx context.Context, date time.Time) ([]dto.TeacherAvailabilityResponse, error)
	Suggestions(ctx context.Context, date time.Time, levels []string) (*dto.SuggestionsResponse, error)
}

// SchedulingHandler wires the scheduling service to HTTP routes.
type SchedulingHandler struct {
	scheduling schedulingService
}

// NewSchedulingHandler constructs a new SchedulingHandler.
func NewSchedulingHandler(scheduling schedulingService) *SchedulingHandler {
	return &SchedulingHandler{scheduling: scheduling}
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. A zero time
// is returned when the parameter is absent so services fall back to today.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+", expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed, true
}

// parseMonthsQuery reads an optional non-negative month count; -1 means the
// parameter was absent and the configured default applies.
func parseMonthsQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return -1, true
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+", expected a non-negative integer"))
		return 0, false
	}
	return months, true
}

func parseWindowQuery(c *gin.Context) (time.Time, int, int, bool) {
	reference, ok := parseDateQuery(c, "date")
	if !ok {
		return time.Time{}, 0, 0, false
	}
	before, ok := parseMonthsQuery(c, "monthsBefore")
	if !ok {
		return time.Time{}, 0, 0, false
	}
	after, ok := parseMonthsQuery(c, "monthsAfter")
	if !ok {
		return time.Time{}, 0, 0, false
	}
	return reference, before, after, true
}

// Window godoc
// @Summary Calendar window
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD, default today)"
// @Param monthsBefore query int false "Months before the reference month"
// @Param monthsAfter query int false "Months after the reference month"
// @Success 200 {object} response.Envelope
// @Router /calendar/window [get]
func (h *SchedulingHandler) Window(c *gin.Context) {
	reference, before, after, ok := parseWindowQuery(c)
	if !ok {
		return
	}
	window := h.scheduling.Window(c.Request.Context(), reference, before, after)
	response.JSON(c, http.StatusOK, window, nil)
}

// Layout godoc
// @Summary Calendar batch layout
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD, default today)"
// @Param monthsBefore query int false "Months before the reference month"
// @Param monthsAfter query int false "Months after the reference month"
// @Success 200 {object} response.Envelope
// @Router /calendar/layout [get]
func (h *SchedulingHandler) Layout(c *gin.Context) {
	reference, before, after, ok := parseWindowQuery(c)
	if !ok {
		return
	}
	layout, hit, err := h.scheduling.Layout(c.Request.Context(), reference, before, after, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, layout, nil, middleware.ExtractMeta(c))
}

// MonthlyLayout godoc
// @Summary Calendar batch layout segmented per month
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD, default today)"
// @Param monthsBefore query int false "Months before the reference month"
// @Param monthsAfter query int false "Months after the reference month"
// @Success 200 {object} response.Envelope
// @Router /calendar/layout/monthly [get]
func (h *SchedulingHandler) MonthlyLayout(c *gin.Context) {
	reference, before, after, ok := parseWindowQuery(c)
	if !ok {
		return
	}
	layout, hit, err := h.scheduling.Layout(c.Request.Context(), reference, before, after, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, layout, nil, middleware.ExtractMeta(c))
}

// ExportLayout godoc
// @Summary Calendar batch layout as CSV
// @Tags Calendar
// @Produce text/csv
// @Param date query string false "Reference date (YYYY-MM-DD, default today)"
// @Success 200 {string} string "CSV payload"
// @Router /calendar/layout/export [get]
func (h *SchedulingHandler) ExportLayout(c *gin.Context) {
	reference, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	layout, _, err := h.scheduling.Layout(c.Request.Context(), reference, -1, -1, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"batch_id", "name", "level", "status", "column_start", "column_end", "row", "visible", "progress", "days_remaining"},
	}
	for _, p := range layout.Placements {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"batch_id":       p.BatchID,
			"name":           p.Name,
			"level":          p.Level,
			"status":         p.Status,
			"column_start":   strconv.Itoa(p.ColumnStart),
			"column_end":     strconv.Itoa(p.ColumnEnd),
			"row":            strconv.Itoa(p.Row),
			"visible":        strconv.FormatBool(p.Visible),
			"progress":       fmt.Sprintf("%.1f", p.Progress),
			"days_remaining": strconv.Itoa(p.DaysRemaining),
		})
	}

	payload, err := export.NewCSVExporter().Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="calendar_layout.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// TeacherAvailability godoc
// @Summary Teacher slot availability on a date
// @Tags Availability
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *SchedulingHandler) TeacherAvailability(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	availability, err := h.scheduling.TeacherAvailability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// RosterAvailability godoc
// @Summary Availability for every active teacher on a date
// @Tags Availability
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Success 200 {object} response.Envelope
// @Router /teachers/availability [get]
func (h *SchedulingHandler) RosterAvailability(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	roster, err := h.scheduling.RosterAvailability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Suggestions godoc
// @Summary Ranked batch placement suggestions
// @Tags Suggestions
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Param levels query string false "Comma separated candidate levels"
// @Success 200 {object} response.Envelope
// @Router /suggestions [get]
func (h *SchedulingHandler) Suggestions(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	var levels []string
	if raw := strings.TrimSpace(c.Query("levels")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if level := strings.ToUpper(strings.TrimSpace(part)); level != "" {
				levels = append(levels, level)
			}
		}
	}
	suggestions, err := h.scheduling.Suggestions(c.Request.Context(), date, levels)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
