package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/models"
	appErrors "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// BatchRequest represents payload for creating or updating a batch.
type BatchRequest struct {
	Name          string  `json:"name" validate:"required"`
	TeacherID     *string `json:"teacher_id" validate:"omitempty"`
	Level         string  `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
	TimeSlot      *string `json:"time_slot" validate:"omitempty,oneof=MORNING EVENING"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status        string  `json:"status" validate:"omitempty,oneof=PLANNING FILLING RUNNING COMPLETED CANCELLED"`
	EnrolledCount int     `json:"enrolled_count" validate:"omitempty,min=0"`
	TotalSeats    int     `json:"total_seats" validate:"omitempty,min=0"`
	ScheduleText  *string `json:"schedule_text" validate:"omitempty,max=500"`
}

// BatchService orchestrates batch operations.
type BatchService struct {
	repo      batchRepository
	teachers  teacherFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, teachers teacherFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, teachers: teachers, cache: cache, validator: validate, logger: logger}
}

// List returns batches plus pagination data.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return batches, pagination, nil
}

// Get returns a batch by id.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// Create registers a new batch record.
func (s *BatchService) Create(ctx context.Context, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	start, end, err := parseBatchDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTeacherAssignable(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.BatchStatusPlanning
	}

	batch := &models.Batch{
		Name:          strings.TrimSpace(req.Name),
		TeacherID:     normalizeOptional(req.TeacherID),
		Level:         req.Level,
		TimeSlot:      normalizeOptional(req.TimeSlot),
		StartDate:     start,
		EndDate:       end,
		Status:        status,
		EnrolledCount: req.EnrolledCount,
		TotalSeats:    req.TotalSeats,
		ScheduleText:  normalizeOptional(req.ScheduleText),
	}

	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	s.invalidateScheduleCache(ctx)
	return batch, nil
}

// Update modifies an existing batch.
func (s *BatchService) Update(ctx context.Context, id string, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := parseBatchDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTeacherAssignable(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	batch.Name = strings.TrimSpace(req.Name)
	batch.TeacherID = normalizeOptional(req.TeacherID)
	batch.Level = req.Level
	batch.TimeSlot = normalizeOptional(req.TimeSlot)
	batch.StartDate = start
	batch.EndDate = end
	if req.Status != "" {
		batch.Status = req.Status
	}
	batch.EnrolledCount = req.EnrolledCount
	batch.TotalSeats = req.TotalSeats
	batch.ScheduleText = normalizeOptional(req.ScheduleText)

	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	s.invalidateScheduleCache(ctx)
	return batch, nil
}

// Delete removes a batch.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	s.invalidateScheduleCache(ctx)
	return nil
}

// ensureTeacherAssignable verifies a referenced teacher exists. Inactive
// teachers stay assignable so existing rosters can be recorded as-is; the
// scheduler reports them as full instead.
func (s *BatchService) ensureTeacherAssignable(ctx context.Context, teacherID *string) error {
	if teacherID == nil || strings.TrimSpace(*teacherID) == "" || s.teachers == nil {
		return nil
	}
	if _, err := s.teachers.FindByID(ctx, strings.TrimSpace(*teacherID)); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "assigned teacher does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher")
	}
	return nil
}

func parseBatchDates(startRaw, endRaw *string) (*time.Time, *time.Time, error) {
	start, err := parseBatchDate(startRaw)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date")
	}
	end, err := parseBatchDate(endRaw)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date")
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_date precedes start_date")
	}
	return start, end, nil
}

func parseBatchDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(*raw), time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (s *BatchService) invalidateScheduleCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "schedule:*"); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}
