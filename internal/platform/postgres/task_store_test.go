package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/platform/postgres"
	"github.com/cgvega/taskvault/internal/store"
)

var taskColumns = []string{
	"id", "user_id", "title", "description", "completed", "object_name", "created_at", "updated_at",
}

func newTestTask(t *testing.T, userID uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, "buy milk", "two liters")
	require.NoError(t, err)
	return task
}

func TestPostgresTaskStore_Create(t *testing.T) {
	t.Run("without file stores NULL object name", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		task := newTestTask(t, uuid.New())
		mock.ExpectExec("INSERT INTO tasks").
			WithArgs(
				task.ID,
				task.UserID,
				task.Title,
				task.Description,
				false,
				nil,
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		assert.NoError(t, taskStore.Create(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with file stores object name", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		task := newTestTask(t, uuid.New())
		task.ObjectName = "report.pdf"
		mock.ExpectExec("INSERT INTO tasks").
			WithArgs(
				task.ID,
				task.UserID,
				task.Title,
				task.Description,
				false,
				"report.pdf",
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		assert.NoError(t, taskStore.Create(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown owner maps to invalid entity", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("INSERT INTO tasks").
			WillReturnError(&pgconn.PgError{
				Code:           "23503",
				ConstraintName: "tasks_user_id_fkey",
			})

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		err = taskStore.Create(context.Background(), newTestTask(t, uuid.New()))

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	t.Run("owned task with NULL object name", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		userID := uuid.New()
		taskID := uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT (.+) FROM tasks").
			WithArgs(taskID, userID).
			WillReturnRows(sqlmock.NewRows(taskColumns).
				AddRow(taskID.String(), userID.String(), "buy milk", "two liters", false, nil, now, now))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		task, err := taskStore.GetByID(context.Background(), userID, taskID)

		require.NoError(t, err)
		assert.Equal(t, taskID, task.ID)
		assert.Equal(t, userID, task.UserID)
		assert.Empty(t, task.ObjectName)
		assert.False(t, task.HasFile())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's task is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		taskID := uuid.New()
		otherUser := uuid.New()
		// The lookup is scoped by both task id and owner, so a foreign
		// owner sees no row at all.
		mock.ExpectQuery("SELECT (.+) FROM tasks").
			WithArgs(taskID, otherUser).
			WillReturnRows(sqlmock.NewRows(taskColumns))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		_, err = taskStore.GetByID(context.Background(), otherUser, taskID)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_GetByObjectName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	userID := uuid.New()
	taskID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(userID, "report.pdf").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), userID.String(), "buy milk", "", false, "report.pdf", now, now))

	taskStore := postgres.NewPostgresTaskStore(db, nil)
	task, err := taskStore.GetByObjectName(context.Background(), userID, "report.pdf")

	require.NoError(t, err)
	assert.Equal(t, "report.pdf", task.ObjectName)
	assert.True(t, task.HasFile())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Update(t *testing.T) {
	t.Run("persists fields scoped to owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		task := newTestTask(t, uuid.New())
		task.Completed = true
		task.ObjectName = "report.pdf"
		mock.ExpectExec("UPDATE tasks").
			WithArgs(
				task.Title,
				task.Description,
				true,
				"report.pdf",
				sqlmock.AnyArg(),
				task.ID,
				task.UserID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		assert.NoError(t, taskStore.Update(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("UPDATE tasks").
			WillReturnResult(sqlmock.NewResult(0, 0))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		err = taskStore.Update(context.Background(), newTestTask(t, uuid.New()))

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	t.Run("removes owned task", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		userID := uuid.New()
		taskID := uuid.New()
		mock.ExpectExec("DELETE FROM tasks").
			WithArgs(taskID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		assert.NoError(t, taskStore.Delete(context.Background(), userID, taskID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("DELETE FROM tasks").
			WillReturnResult(sqlmock.NewResult(0, 0))

		taskStore := postgres.NewPostgresTaskStore(db, nil)
		err = taskStore.Delete(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	userID := uuid.New()
	now := time.Now().UTC()
	first := uuid.New()
	second := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(first.String(), userID.String(), "buy milk", "", false, nil, now, now).
			AddRow(second.String(), userID.String(), "file taxes", "before april", true, "w2.pdf", now, now))

	taskStore := postgres.NewPostgresTaskStore(db, nil)
	tasks, err := taskStore.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first, tasks[0].ID)
	assert.Empty(t, tasks[0].ObjectName)
	assert.Equal(t, second, tasks[1].ID)
	assert.Equal(t, "w2.pdf", tasks[1].ObjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
