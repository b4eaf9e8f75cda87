package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/models"
)

func batchRows() *sqlmock.Rows {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "name", "teacher_id", "level", "time_slot", "start_date", "end_date", "status", "enrolled_count", "total_seats", "schedule_text", "created_at", "updated_at"}).
		AddRow("b1", "A1 Jan Morning", "t1", "A1", "MORNING", start, end, models.BatchStatusRunning, 6, 10, nil, time.Now(), time.Now())
}

func TestBatchRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM batches WHERE 1=1 ORDER BY start_date ASC NULLS LAST LIMIT 20 OFFSET 0")).
		WillReturnRows(batchRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM batches WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.BatchFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListFiltersByStatusAndSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("status = $1 AND time_slot = $2")).
		WithArgs("RUNNING", "MORNING").
		WillReturnRows(batchRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("RUNNING", "MORNING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.BatchFilter{Status: "running", TimeSlot: "morning"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListOpen(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM batches WHERE status NOT IN ($1, $2) ORDER BY id ASC")).
		WithArgs(models.BatchStatusCompleted, models.BatchStatusCancelled).
		WillReturnRows(batchRows())

	batches, err := repo.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "b1", batches[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM batches WHERE teacher_id = $1 ORDER BY id ASC")).
		WithArgs("t1").
		WillReturnRows(batchRows())

	batches, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("INSERT INTO batches").
		WillReturnResult(sqlmock.NewResult(1, 1))

	batch := &models.Batch{Name: "B1 Feb Evening", Level: "B1", Status: models.BatchStatusPlanning, TotalSeats: 8}
	require.NoError(t, repo.Create(context.Background(), batch))
	assert.NotEmpty(t, batch.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM batches WHERE id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
