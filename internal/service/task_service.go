package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/platform/logger"
	"github.com/cgvega/taskvault/internal/storage"
	"github.com/cgvega/taskvault/internal/store"
)

// UpdateTaskParams carries the fields of a partial task update. Nil fields
// are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService provides task CRUD operations scoped to an owning user.
type TaskService interface {
	// ListTasks returns all tasks owned by the user in creation order.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// CreateTask creates a task for the user, optionally attaching a file.
	// When a file is supplied it is uploaded through the gateway before the
	// task row is inserted; if the upload fails no task record is created.
	CreateTask(
		ctx context.Context,
		userID uuid.UUID,
		title, description string,
		file io.Reader,
		filename string,
	) (*domain.Task, error)

	// GetTask retrieves a single task owned by the user.
	// Returns store.ErrTaskNotFound if no task with that id belongs to the
	// user.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task owned by the user and
	// returns the updated task. Same not-found rule as GetTask.
	UpdateTask(
		ctx context.Context,
		userID, taskID uuid.UUID,
		params UpdateTaskParams,
	) (*domain.Task, error)

	// DeleteTask removes a task owned by the user, then best-effort deletes
	// its attached object. Object deletion failure is logged and swallowed;
	// the row delete never rolls back because of it.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	db        *sql.DB
	objects   storage.ObjectStore
	queue     storage.NotificationQueue
	logger    *slog.Logger
}

// Ensure taskServiceImpl implements TaskService.
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	db *sql.DB,
	objects storage.ObjectStore,
	queue storage.NotificationQueue,
	log *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("taskStore cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if objects == nil {
		return nil, fmt.Errorf("objects cannot be nil")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		db:        db,
		objects:   objects,
		queue:     queue,
		logger:    log.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.Int("task_count", len(tasks)))
	return tasks, nil
}

// CreateTask implements TaskService.CreateTask.
//
// The sequencing rule matters here: when a file is supplied, the object is
// uploaded first so that a task row never references an object that was
// never stored. If the insert fails after a successful upload, the orphaned
// object is deleted best-effort.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	file io.Reader,
	filename string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, title, description)
	if err != nil {
		log.Debug("task validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	if file != nil {
		objectName, err := ObjectNameFromFilename(filename)
		if err != nil {
			return nil, err
		}

		if err := s.objects.PutObject(ctx, objectName, file); err != nil {
			log.Error("failed to upload object for new task",
				slog.String("error", err.Error()),
				slog.String("object_name", objectName),
				slog.String("user_id", userID.String()))
			return nil, NewTaskServiceError("create_task", "failed to upload file", err)
		}
		task.ObjectName = objectName
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		if task.HasFile() {
			s.cleanupObject(ctx, task.ObjectName, "create_task")
		}
		log.Error("failed to save task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	s.notifyTaskCreated(ctx, task)

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Bool("has_file", task.HasFile()))
	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
		} else {
			log.Error("failed to retrieve task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, err
	}

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
//
// Follows the pattern of retrieving the full task inside the transaction,
// applying only the provided fields, and writing the complete task back.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}

		if params.Title != nil {
			task.Title = strings.TrimSpace(*params.Title)
		}
		if params.Description != nil {
			task.Description = *params.Description
		}
		if params.Completed != nil {
			task.Completed = *params.Completed
		}
		task.UpdatedAt = time.Now().UTC()

		if err := task.Validate(); err != nil {
			return err
		}

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, domain.ErrEmptyTaskTitle) {
			log.Debug("task update rejected",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
			return nil, err
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to retrieve task for deletion",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return NewTaskServiceError("delete_task", "failed to retrieve task", err)
	}

	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	// The row is gone; losing the orphaned object is acceptable, failing
	// the request is not.
	if task.HasFile() {
		s.cleanupObject(ctx, task.ObjectName, "delete_task")
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// cleanupObject removes an object that is no longer referenced by any task
// row. Failures are logged and swallowed.
func (s *taskServiceImpl) cleanupObject(ctx context.Context, objectName, operation string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.objects.DeleteObject(ctx, objectName); err != nil {
		log.Warn("failed to delete orphaned object",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName),
			slog.String("operation", operation))
	}
}

// notifyTaskCreated enqueues a creation notification after the task row is
// committed. Delivery is best-effort: a queue failure is logged and never
// surfaces to the caller.
func (s *taskServiceImpl) notifyTaskCreated(ctx context.Context, task *domain.Task) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	attributes := map[string]string{
		"event":   "task_created",
		"task_id": task.ID.String(),
		"user_id": task.UserID.String(),
	}

	msgID, err := s.queue.EnqueueNotification(ctx, attributes, task.Title)
	if err != nil {
		log.Warn("failed to enqueue task creation notification",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return
	}

	log.Debug("task creation notification enqueued",
		slog.String("task_id", task.ID.String()),
		slog.String("message_id", msgID))
}
