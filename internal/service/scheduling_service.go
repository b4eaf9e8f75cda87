package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/dto"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/models"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/schedule"
	appErrors "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/errors"
)

type schedulingTeacherRepository interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type schedulingBatchRepository interface {
	ListOpen(ctx context.Context) ([]models.Batch, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Batch, error)
}

// SchedulingOptions tunes the calendar window and suggestion defaults.
type SchedulingOptions struct {
	MonthsBefore         int
	MonthsAfter          int
	LayoutCacheTTL       time.Duration
	CandidateLevels      []string
	DefaultMaxConcurrent int
}

// SchedulingService computes calendar windows, batch layouts, availability
// snapshots and placement suggestions on top of the stored roster.
type SchedulingService struct {
	teachers schedulingTeacherRepository
	batches  schedulingBatchRepository
	cache    *CacheService
	metrics  *MetricsService
	opts     SchedulingOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewSchedulingService constructs a SchedulingService.
func NewSchedulingService(teachers schedulingTeacherRepository, batches schedulingBatchRepository, cache *CacheService, metrics *MetricsService, opts SchedulingOptions, logger *zap.Logger) *SchedulingService {
	if opts.MonthsBefore <= 0 {
		opts.MonthsBefore = 5
	}
	if opts.MonthsAfter <= 0 {
		opts.MonthsAfter = 6
	}
	if opts.LayoutCacheTTL <= 0 {
		opts.LayoutCacheTTL = 10 * time.Minute
	}
	if len(opts.CandidateLevels) == 0 {
		opts.CandidateLevels = []string{"A1", "A2", "B1", "B2"}
	}
	if opts.DefaultMaxConcurrent <= 0 {
		opts.DefaultMaxConcurrent = schedule.DefaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		teachers: teachers,
		batches:  batches,
		cache:    cache,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// resolveSpan applies the configured window size where the caller passed a
// negative override.
func (s *SchedulingService) resolveSpan(monthsBefore, monthsAfter int) (int, int) {
	if monthsBefore < 0 {
		monthsBefore = s.opts.MonthsBefore
	}
	if monthsAfter < 0 {
		monthsAfter = s.opts.MonthsAfter
	}
	return monthsBefore, monthsAfter
}

// Window returns the month grid around the reference date. A zero reference
// means "now"; negative month counts fall back to the configured window.
func (s *SchedulingService) Window(_ context.Context, reference time.Time, monthsBefore, monthsAfter int) dto.CalendarWindowResponse {
	if reference.IsZero() {
		reference = s.now()
	}
	before, after := s.resolveSpan(monthsBefore, monthsAfter)
	window := schedule.BuildWindow(reference, before, after)
	return toWindowResponse(window)
}

// Layout positions every open batch on the calendar window. When perUnit is
// set each batch is segmented per month so rows reset at month boundaries.
// The boolean reports whether the response came from cache.
func (s *SchedulingService) Layout(ctx context.Context, reference time.Time, monthsBefore, monthsAfter int, perUnit bool) (*dto.LayoutResponse, bool, error) {
	if reference.IsZero() {
		reference = s.now()
	}
	before, after := s.resolveSpan(monthsBefore, monthsAfter)
	mode := "grid"
	if perUnit {
		mode = "monthly"
	}
	key := fmt.Sprintf("schedule:layout:%s:%s:%dx%d", mode, schedule.Day(reference).Format("2006-01-02"), before, after)

	var cached dto.LayoutResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	batches, err := s.batches.ListOpen(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}

	window := schedule.BuildWindow(reference, before, after)
	entities := make([]schedule.Entity, 0, len(batches))
	byID := make(map[string]models.Batch, len(batches))
	for _, b := range batches {
		entities = append(entities, toEntity(b))
		byID[b.ID] = b
	}

	var placements []schedule.Placement
	if perUnit {
		placements = schedule.LayoutByUnit(entities, window)
	} else {
		placements = schedule.Layout(entities, window)
	}

	now := s.now()
	resp := &dto.LayoutResponse{
		Window:     toWindowResponse(window),
		Placements: make([]dto.BatchPlacement, 0, len(placements)),
	}
	for _, p := range placements {
		batch := byID[p.EntityID]
		rng := toRange(batch)
		progress := schedule.Progress(rng, now)
		resp.Placements = append(resp.Placements, dto.BatchPlacement{
			BatchID:       p.EntityID,
			Name:          batch.Name,
			Level:         batch.Level,
			Status:        batch.Status,
			UnitKey:       p.UnitKey,
			ColumnStart:   p.ColumnStart,
			ColumnEnd:     p.ColumnEnd,
			Row:           p.Row,
			Visible:       p.Visible,
			ClippedStart:  p.ClippedStart,
			ClippedEnd:    p.ClippedEnd,
			Progress:      progress,
			DaysRemaining: schedule.DaysRemaining(rng, now),
			ColorWeight:   schedule.ColorWeight(progress),
			EnrolledCount: batch.EnrolledCount,
			TotalSeats:    batch.TotalSeats,
		})
	}

	if s.metrics != nil {
		s.metrics.ObserveLayout(time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.opts.LayoutCacheTTL); err != nil {
			s.logger.Warn("layout cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, false, nil
}

// TeacherAvailability reports one teacher's slot occupancy on a date.
func (s *SchedulingService) TeacherAvailability(ctx context.Context, teacherID string, date time.Time) (*dto.TeacherAvailabilityResponse, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	if date.IsZero() {
		date = s.now()
	}

	batches, err := s.batches.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher batches")
	}

	profile := toProfile(*teacher, s.opts.DefaultMaxConcurrent)
	availability := schedule.ComputeAvailability(profile, toEntities(batches), date)
	resp := toAvailabilityResponse(*teacher, availability, date)
	return &resp, nil
}

// RosterAvailability reports availability for every active teacher on a date.
func (s *SchedulingService) RosterAvailability(ctx context.Context, date time.Time) ([]dto.TeacherAvailabilityResponse, error) {
	if date.IsZero() {
		date = s.now()
	}
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	batches, err := s.batches.ListOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}

	entities := toEntities(batches)
	out := make([]dto.TeacherAvailabilityResponse, 0, len(teachers))
	for _, t := range teachers {
		availability := schedule.ComputeAvailability(toProfile(t, s.opts.DefaultMaxConcurrent), entities, date)
		out = append(out, toAvailabilityResponse(t, availability, date))
	}
	return out, nil
}

// Suggestions ranks feasible new-batch placements for a date. An empty levels
// list falls back to the configured candidate levels.
func (s *SchedulingService) Suggestions(ctx context.Context, date time.Time, levels []string) (*dto.SuggestionsResponse, error) {
	if date.IsZero() {
		date = s.now()
	}
	if len(levels) == 0 {
		levels = s.opts.CandidateLevels
	}

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	batches, err := s.batches.ListOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}

	profiles := make([]schedule.TeacherProfile, 0, len(teachers))
	for _, t := range teachers {
		profiles = append(profiles, toProfile(t, s.opts.DefaultMaxConcurrent))
	}

	suggestions := schedule.Suggest(profiles, toEntities(batches), date, levels)
	if s.metrics != nil {
		s.metrics.RecordSuggestionRun()
	}
	return &dto.SuggestionsResponse{
		Date:        schedule.Day(date).Format("2006-01-02"),
		Levels:      levels,
		Suggestions: suggestions,
	}, nil
}

func toWindowResponse(window schedule.Window) dto.CalendarWindowResponse {
	units := make([]dto.MonthUnit, 0, len(window.Units))
	for _, u := range window.Units {
		units = append(units, dto.MonthUnit{Key: u.Key, Start: u.Start, End: u.End, DayCount: u.DayCount})
	}
	return dto.CalendarWindowResponse{
		Start:     window.Start,
		End:       window.End,
		TotalDays: window.Days(),
		Units:     units,
	}
}

func toRange(b models.Batch) schedule.TimeRange {
	return schedule.TimeRange{Start: b.StartDate, End: b.EndDate}
}

func toEntity(b models.Batch) schedule.Entity {
	var teacherID, slotTag string
	if b.TeacherID != nil {
		teacherID = *b.TeacherID
	}
	if b.TimeSlot != nil {
		slotTag = *b.TimeSlot
	}
	return schedule.Entity{
		ID:        b.ID,
		TeacherID: teacherID,
		Level:     b.Level,
		SlotTag:   slotTag,
		Range:     toRange(b),
		Status:    schedule.Status(b.Status),
		Enrolled:  b.EnrolledCount,
		Seats:     b.TotalSeats,
	}
}

func toEntities(batches []models.Batch) []schedule.Entity {
	entities := make([]schedule.Entity, 0, len(batches))
	for _, b := range batches {
		entities = append(entities, toEntity(b))
	}
	return entities
}

func toProfile(t models.Teacher, defaultMax int) schedule.TeacherProfile {
	slots := make([]schedule.Slot, 0, len(t.TimeSlots))
	for _, raw := range t.TimeSlots {
		if slot, ok := schedule.ParseSlot(raw); ok {
			slots = append(slots, slot)
		}
	}
	max := t.MaxConcurrent
	if max <= 0 {
		max = defaultMax
	}
	return schedule.TeacherProfile{
		ID:            t.ID,
		Name:          t.FullName,
		SkillLevels:   []string(t.SkillLevels),
		TimeSlots:     slots,
		MaxConcurrent: max,
		Active:        t.Active,
	}
}

func toAvailabilityResponse(t models.Teacher, availability schedule.Availability, date time.Time) dto.TeacherAvailabilityResponse {
	return dto.TeacherAvailabilityResponse{
		TeacherID:   t.ID,
		TeacherName: t.FullName,
		Date:        schedule.Day(date).Format("2006-01-02"),
		SlotStatus:  availability.SlotStatus,
		CurrentLoad: availability.CurrentLoad,
		Capacity:    availability.Capacity,
	}
}
