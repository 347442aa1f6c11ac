package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/storage"
	"github.com/cgvega/taskvault/internal/store"
)

func newTaskServiceForTest(
	t *testing.T,
) (TaskService, *MockTaskStore, *MockObjectStore, *MockNotificationQueue, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	taskStore := new(MockTaskStore)
	objects := new(MockObjectStore)
	queue := new(MockNotificationQueue)

	svc, err := NewTaskService(taskStore, db, objects, queue, slog.Default())
	require.NoError(t, err)

	return svc, taskStore, objects, queue, dbMock
}

func TestNewTaskService_NilDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = NewTaskService(nil, db, new(MockObjectStore), new(MockNotificationQueue), nil)
	assert.Error(t, err)

	_, err = NewTaskService(new(MockTaskStore), nil, new(MockObjectStore), new(MockNotificationQueue), nil)
	assert.Error(t, err)

	_, err = NewTaskService(new(MockTaskStore), db, nil, new(MockNotificationQueue), nil)
	assert.Error(t, err)

	_, err = NewTaskService(new(MockTaskStore), db, new(MockObjectStore), nil, nil)
	assert.Error(t, err)
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates task without file", func(t *testing.T) {
		svc, taskStore, objects, queue, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)
		queue.On("EnqueueNotification", mock.Anything, mock.MatchedBy(func(attrs map[string]string) bool {
			return attrs["event"] == "task_created" && attrs["user_id"] == userID.String()
		}), "buy milk").Return("msg-1", nil)

		task, err := svc.CreateTask(ctx, userID, "buy milk", "two liters", nil, "")

		require.NoError(t, err)
		assert.Equal(t, userID, task.UserID)
		assert.Equal(t, "buy milk", task.Title)
		assert.Equal(t, "two liters", task.Description)
		assert.False(t, task.Completed)
		assert.False(t, task.HasFile())
		objects.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything)
		taskStore.AssertExpectations(t)
		queue.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("uploads file before inserting row", func(t *testing.T) {
		svc, taskStore, objects, queue, dbMock := newTaskServiceForTest(t)

		objects.On("PutObject", mock.Anything, "report.pdf", mock.Anything).Return(nil)
		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.ObjectName == "report.pdf"
		})).Return(nil)
		queue.On("EnqueueNotification", mock.Anything, mock.Anything, mock.Anything).
			Return("msg-2", nil)

		task, err := svc.CreateTask(ctx, userID, "send report", "", strings.NewReader("pdf bytes"), "/tmp/report.pdf")

		require.NoError(t, err)
		assert.Equal(t, "report.pdf", task.ObjectName)
		objects.AssertExpectations(t)
		taskStore.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no task record when upload fails", func(t *testing.T) {
		svc, taskStore, objects, _, _ := newTaskServiceForTest(t)

		objects.On("PutObject", mock.Anything, "report.pdf", mock.Anything).
			Return(storage.ErrStorageUnavailable)

		_, err := svc.CreateTask(ctx, userID, "send report", "", strings.NewReader("x"), "report.pdf")

		assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
		taskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cleans up uploaded object when insert fails", func(t *testing.T) {
		svc, taskStore, objects, queue, dbMock := newTaskServiceForTest(t)

		objects.On("PutObject", mock.Anything, "report.pdf", mock.Anything).Return(nil)
		objects.On("DeleteObject", mock.Anything, "report.pdf").Return(nil)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()
		taskStore.On("Create", mock.Anything, mock.Anything).Return(store.ErrInvalidEntity)

		_, err := svc.CreateTask(ctx, userID, "send report", "", strings.NewReader("x"), "report.pdf")

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		objects.AssertExpectations(t)
		queue.AssertNotCalled(t, "EnqueueNotification", mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		_, err := svc.CreateTask(ctx, userID, "   ", "desc", nil, "")

		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
		taskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects bad filename before uploading", func(t *testing.T) {
		svc, _, objects, _, _ := newTaskServiceForTest(t)

		_, err := svc.CreateTask(ctx, userID, "send report", "", strings.NewReader("x"), "..")

		assert.ErrorIs(t, err, ErrInvalidFilename)
		objects.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("queue failure does not fail the creation", func(t *testing.T) {
		svc, taskStore, _, queue, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("Create", mock.Anything, mock.Anything).Return(nil)
		queue.On("EnqueueNotification", mock.Anything, mock.Anything, mock.Anything).
			Return("", storage.ErrStorageUnavailable)

		task, err := svc.CreateTask(ctx, userID, "buy milk", "", nil, "")

		require.NoError(t, err)
		assert.NotNil(t, task)
		queue.AssertExpectations(t)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns tasks for user", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		expected := []domain.Task{
			{ID: uuid.New(), UserID: userID, Title: "first"},
			{ID: uuid.New(), UserID: userID, Title: "second"},
		}
		taskStore.On("ListByUser", mock.Anything, userID).Return(expected, nil)

		tasks, err := svc.ListTasks(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, expected, tasks)
	})

	t.Run("wraps store failure", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		storeErr := errors.New("connection refused")
		taskStore.On("ListByUser", mock.Anything, userID).Return(nil, storeErr)

		_, err := svc.ListTasks(ctx, userID)

		assert.ErrorIs(t, err, storeErr)
		var svcErr *TaskServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "list_tasks", svcErr.Operation)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()

	t.Run("returns owned task", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		expected := &domain.Task{ID: taskID, UserID: userID, Title: "buy milk"}
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(expected, nil)

		task, err := svc.GetTask(ctx, userID, taskID)

		require.NoError(t, err)
		assert.Equal(t, expected, task)
	})

	t.Run("passes through not found", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(nil, store.ErrTaskNotFound)

		_, err := svc.GetTask(ctx, userID, taskID)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()

	existing := func() *domain.Task {
		return &domain.Task{
			ID:          taskID,
			UserID:      userID,
			Title:       "original title",
			Description: "original description",
			Completed:   false,
		}
	}

	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("applies only provided fields", func(t *testing.T) {
		svc, taskStore, _, _, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(existing(), nil)
		taskStore.On("Update", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "original title" &&
				task.Description == "original description" &&
				task.Completed
		})).Return(nil)

		task, err := svc.UpdateTask(ctx, userID, taskID, UpdateTaskParams{Completed: boolPtr(true)})

		require.NoError(t, err)
		assert.True(t, task.Completed)
		assert.Equal(t, "original title", task.Title)
		taskStore.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("updates title and description", func(t *testing.T) {
		svc, taskStore, _, _, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(existing(), nil)
		taskStore.On("Update", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "new title" && task.Description == "new description"
		})).Return(nil)

		task, err := svc.UpdateTask(ctx, userID, taskID, UpdateTaskParams{
			Title:       strPtr("  new title  "),
			Description: strPtr("new description"),
		})

		require.NoError(t, err)
		assert.Equal(t, "new title", task.Title)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("refreshes the updated timestamp", func(t *testing.T) {
		svc, taskStore, _, _, dbMock := newTaskServiceForTest(t)

		stale := existing()
		stale.UpdatedAt = time.Now().UTC().Add(-time.Hour)
		loadedAt := stale.UpdatedAt

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(stale, nil)
		taskStore.On("Update", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.UpdatedAt.After(loadedAt)
		})).Return(nil)

		task, err := svc.UpdateTask(ctx, userID, taskID, UpdateTaskParams{Completed: boolPtr(true)})

		require.NoError(t, err)
		assert.True(t, task.UpdatedAt.After(loadedAt))
		taskStore.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("rejects update that empties the title", func(t *testing.T) {
		svc, taskStore, _, _, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(existing(), nil)

		_, err := svc.UpdateTask(ctx, userID, taskID, UpdateTaskParams{Title: strPtr("   ")})

		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
		taskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("not found for another user's task", func(t *testing.T) {
		svc, taskStore, _, _, dbMock := newTaskServiceForTest(t)

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()
		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(nil, store.ErrTaskNotFound)

		_, err := svc.UpdateTask(ctx, userID, taskID, UpdateTaskParams{Completed: boolPtr(true)})

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()

	t.Run("deletes row and attached object", func(t *testing.T) {
		svc, taskStore, objects, _, _ := newTaskServiceForTest(t)

		taskStore.On("GetByID", mock.Anything, userID, taskID).
			Return(&domain.Task{ID: taskID, UserID: userID, Title: "t", ObjectName: "report.pdf"}, nil)
		taskStore.On("Delete", mock.Anything, userID, taskID).Return(nil)
		objects.On("DeleteObject", mock.Anything, "report.pdf").Return(nil)

		err := svc.DeleteTask(ctx, userID, taskID)

		require.NoError(t, err)
		taskStore.AssertExpectations(t)
		objects.AssertExpectations(t)
	})

	t.Run("object delete failure is swallowed", func(t *testing.T) {
		svc, taskStore, objects, _, _ := newTaskServiceForTest(t)

		taskStore.On("GetByID", mock.Anything, userID, taskID).
			Return(&domain.Task{ID: taskID, UserID: userID, Title: "t", ObjectName: "report.pdf"}, nil)
		taskStore.On("Delete", mock.Anything, userID, taskID).Return(nil)
		objects.On("DeleteObject", mock.Anything, "report.pdf").
			Return(storage.ErrStorageUnavailable)

		err := svc.DeleteTask(ctx, userID, taskID)

		assert.NoError(t, err)
		objects.AssertExpectations(t)
	})

	t.Run("skips object delete when no file attached", func(t *testing.T) {
		svc, taskStore, objects, _, _ := newTaskServiceForTest(t)

		taskStore.On("GetByID", mock.Anything, userID, taskID).
			Return(&domain.Task{ID: taskID, UserID: userID, Title: "t"}, nil)
		taskStore.On("Delete", mock.Anything, userID, taskID).Return(nil)

		err := svc.DeleteTask(ctx, userID, taskID)

		require.NoError(t, err)
		objects.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc, taskStore, _, _, _ := newTaskServiceForTest(t)

		taskStore.On("GetByID", mock.Anything, userID, taskID).Return(nil, store.ErrTaskNotFound)

		err := svc.DeleteTask(ctx, userID, taskID)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		taskStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
