package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/models"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/schedule"
	appErrors "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/errors"
)

type rosterStub struct {
	active []models.Teacher
}

func (s rosterStub) ListActive(ctx context.Context) ([]models.Teacher, error) {
	return s.active, nil
}

func (s rosterStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	for i := range s.active {
		if s.active[i].ID == id {
			return &s.active[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type openBatchesStub struct {
	open []models.Batch
}

func (s openBatchesStub) ListOpen(ctx context.Context) ([]models.Batch, error) {
	return s.open, nil
}

func (s openBatchesStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.Batch, error) {
	var out []models.Batch
	for _, b := range s.open {
		if b.TeacherID != nil && *b.TeacherID == teacherID {
			out = append(out, b)
		}
	}
	return out, nil
}

type cacheRepoStub struct {
	entries map[string][]byte
	sets    []string
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	s.entries[key] = raw
	s.sets = append(s.sets, key)
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.entries = nil
	return nil
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func utcDatePtr(y int, m time.Month, d int) *time.Time {
	t := utcDate(y, m, d)
	return &t
}

func morningTeacher() models.Teacher {
	return models.Teacher{
		ID:            "t1",
		FullName:      "Anna",
		SkillLevels:   []string{"A1"},
		TimeSlots:     []string{"MORNING"},
		MaxConcurrent: 2,
		Active:        true,
	}
}

func runningBatch() models.Batch {
	teacherID := "t1"
	slot := "MORNING"
	return models.Batch{
		ID:            "b1",
		Name:          "A1 Jan Morning",
		TeacherID:     &teacherID,
		Level:         "A1",
		TimeSlot:      &slot,
		StartDate:     utcDatePtr(2025, time.January, 10),
		EndDate:       utcDatePtr(2025, time.March, 10),
		Status:        models.BatchStatusRunning,
		EnrolledCount: 6,
		TotalSeats:    10,
	}
}

func TestSchedulingServiceWindow(t *testing.T) {
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{}, nil, nil, SchedulingOptions{}, nil)

	resp := svc.Window(context.Background(), utcDate(2025, time.June, 15), -1, -1)
	require.Len(t, resp.Units, 12)
	assert.Equal(t, utcDate(2025, time.January, 1), resp.Start)
	assert.Equal(t, utcDate(2025, time.December, 31), resp.End)
	assert.Equal(t, "2025-01", resp.Units[0].Key)
	assert.Equal(t, "2025-12", resp.Units[11].Key)
	assert.Equal(t, 365, resp.TotalDays)
}

func TestSchedulingServiceWindowSpanOverride(t *testing.T) {
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{}, nil, nil, SchedulingOptions{}, nil)

	resp := svc.Window(context.Background(), utcDate(2025, time.June, 15), 1, 1)
	require.Len(t, resp.Units, 3)
	assert.Equal(t, "2025-05", resp.Units[0].Key)
	assert.Equal(t, "2025-07", resp.Units[2].Key)
}

func TestSchedulingServiceLayoutDecoratesPlacements(t *testing.T) {
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{open: []models.Batch{runningBatch()}}, nil, nil, SchedulingOptions{}, nil)
	svc.now = func() time.Time { return utcDate(2025, time.February, 8) }

	resp, hit, err := svc.Layout(context.Background(), utcDate(2025, time.June, 15), -1, -1, false)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, resp.Placements, 1)

	p := resp.Placements[0]
	assert.Equal(t, "b1", p.BatchID)
	assert.Equal(t, "A1 Jan Morning", p.Name)
	assert.True(t, p.Visible)
	assert.Equal(t, 10, p.ColumnStart)
	assert.Equal(t, 70, p.ColumnEnd)
	assert.Equal(t, 0, p.Row)
	assert.Greater(t, p.Progress, 0.0)
	assert.Less(t, p.Progress, 100.0)
	assert.Equal(t, 30, p.DaysRemaining)
	assert.InDelta(t, 1-0.9*p.Progress/100, p.ColorWeight, 1e-9)
}

func TestSchedulingServiceLayoutUsesCache(t *testing.T) {
	repo := &cacheRepoStub{}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{open: []models.Batch{runningBatch()}}, cache, nil, SchedulingOptions{}, nil)

	first, hit, err := svc.Layout(context.Background(), utcDate(2025, time.June, 15), -1, -1, false)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, repo.sets, 1)
	assert.Contains(t, repo.sets[0], "schedule:layout:grid:2025-06-15")

	second, hit, err := svc.Layout(context.Background(), utcDate(2025, time.June, 15), -1, -1, false)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, len(first.Placements), len(second.Placements))
	assert.Len(t, repo.sets, 1)
}

func TestSchedulingServiceMonthlyLayoutSegments(t *testing.T) {
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{open: []models.Batch{runningBatch()}}, nil, nil, SchedulingOptions{}, nil)

	resp, _, err := svc.Layout(context.Background(), utcDate(2025, time.June, 15), -1, -1, true)
	require.NoError(t, err)

	keys := make(map[string]bool)
	for _, p := range resp.Placements {
		keys[p.UnitKey] = true
	}
	assert.True(t, keys["2025-01"])
	assert.True(t, keys["2025-02"])
	assert.True(t, keys["2025-03"])
	assert.Len(t, resp.Placements, 3)
}

func TestSchedulingServiceTeacherAvailability(t *testing.T) {
	svc := NewSchedulingService(
		rosterStub{active: []models.Teacher{morningTeacher()}},
		openBatchesStub{open: []models.Batch{runningBatch()}},
		nil, nil, SchedulingOptions{}, nil,
	)

	resp, err := svc.TeacherAvailability(context.Background(), "t1", utcDate(2025, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, "Anna", resp.TeacherName)
	assert.Equal(t, "2025-02-01", resp.Date)
	assert.Equal(t, 1, resp.CurrentLoad)
	assert.Equal(t, schedule.CapacityPartial, resp.Capacity)
	morning := resp.SlotStatus[schedule.SlotMorning]
	assert.False(t, morning.Free)
	assert.Equal(t, "b1", morning.OccupiedBy)
}

func TestSchedulingServiceTeacherAvailabilityNotFound(t *testing.T) {
	svc := NewSchedulingService(rosterStub{}, openBatchesStub{}, nil, nil, SchedulingOptions{}, nil)

	_, err := svc.TeacherAvailability(context.Background(), "ghost", utcDate(2025, time.February, 1))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSchedulingServiceRosterAvailability(t *testing.T) {
	other := morningTeacher()
	other.ID = "t2"
	other.FullName = "Ben"
	svc := NewSchedulingService(
		rosterStub{active: []models.Teacher{morningTeacher(), other}},
		openBatchesStub{open: []models.Batch{runningBatch()}},
		nil, nil, SchedulingOptions{}, nil,
	)

	resp, err := svc.RosterAvailability(context.Background(), utcDate(2025, time.February, 1))
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, schedule.CapacityPartial, resp[0].Capacity)
	assert.Equal(t, schedule.CapacityAvailable, resp[1].Capacity)
}

func TestSchedulingServiceSuggestionsDefaultLevels(t *testing.T) {
	svc := NewSchedulingService(
		rosterStub{active: []models.Teacher{morningTeacher()}},
		openBatchesStub{},
		nil, nil, SchedulingOptions{}, nil,
	)

	resp, err := svc.Suggestions(context.Background(), utcDate(2025, time.February, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, resp.Levels)
	require.NotEmpty(t, resp.Suggestions)

	top := resp.Suggestions[0]
	assert.Equal(t, "t1", top.TeacherID)
	assert.Equal(t, "A1", top.Level)
	assert.Equal(t, schedule.SlotMorning, top.Slot)
	assert.Equal(t, 100, top.Score)
	for i := 1; i < len(resp.Suggestions); i++ {
		assert.LessOrEqual(t, resp.Suggestions[i].Score, resp.Suggestions[i-1].Score)
	}
}
