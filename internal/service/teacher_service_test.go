package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/models"
	appErrors "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/errors"
)

type teacherRepoStub struct {
	teachers    map[string]*models.Teacher
	listItems   []models.Teacher
	listTotal   int
	listErr     error
	emailTaken  bool
	emailErr    error
	created     []*models.Teacher
	updated     []*models.Teacher
	deactivated []string
}

func (s *teacherRepoStub) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	return s.listItems, s.listTotal, s.listErr
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.teachers[id]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return s.emailTaken, s.emailErr
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = "t-new"
	s.created = append(s.created, teacher)
	return nil
}

func (s *teacherRepoStub) Update(ctx context.Context, teacher *models.Teacher) error {
	s.updated = append(s.updated, teacher)
	return nil
}

func (s *teacherRepoStub) Deactivate(ctx context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

func TestTeacherServiceCreateNormalizesTags(t *testing.T) {
	repo := &teacherRepoStub{}
	svc := NewTeacherService(repo, nil, nil, nil)

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		Email:       "anna@planbeta.in",
		FullName:    "  Anna  ",
		SkillLevels: []string{"a1", "A2", "A1"},
		TimeSlots:   []string{"morning"},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-new", teacher.ID)
	assert.Equal(t, "Anna", teacher.FullName)
	assert.Equal(t, []string{"A1", "A2"}, []string(teacher.SkillLevels))
	assert.Equal(t, []string{"MORNING"}, []string(teacher.TimeSlots))
	assert.True(t, teacher.Active)
}

func TestTeacherServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc := NewTeacherService(&teacherRepoStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Email: "not-an-email", FullName: "X"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTeacherServiceCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewTeacherService(&teacherRepoStub{emailTaken: true}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Email: "anna@planbeta.in", FullName: "Anna"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestTeacherServiceUpdateTogglesActive(t *testing.T) {
	inactive := false
	repo := &teacherRepoStub{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", Email: "anna@planbeta.in", FullName: "Anna", Active: true},
	}}
	svc := NewTeacherService(repo, nil, nil, nil)

	teacher, err := svc.Update(context.Background(), "t1", UpdateTeacherRequest{
		Email:    "anna@planbeta.in",
		FullName: "Anna",
		Active:   &inactive,
	})
	require.NoError(t, err)
	assert.False(t, teacher.Active)
	require.Len(t, repo.updated, 1)
}

func TestTeacherServiceGetNotFound(t *testing.T) {
	svc := NewTeacherService(&teacherRepoStub{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTeacherServiceDeactivate(t *testing.T) {
	repo := &teacherRepoStub{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", Email: "anna@planbeta.in", FullName: "Anna", Active: true},
	}}
	svc := NewTeacherService(repo, nil, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "t1"))
	assert.Equal(t, []string{"t1"}, repo.deactivated)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
}
