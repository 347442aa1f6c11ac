package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/service"
	"github.com/cgvega/taskvault/internal/store"
)

// MockTaskService implements service.TaskService for testing.
type MockTaskService struct {
	ListTasksFn  func(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	CreateTaskFn func(ctx context.Context, userID uuid.UUID, title, description string, file io.Reader, filename string) (*domain.Task, error)
	GetTaskFn    func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	UpdateTaskFn func(ctx context.Context, userID, taskID uuid.UUID, params service.UpdateTaskParams) (*domain.Task, error)
	DeleteTaskFn func(ctx context.Context, userID, taskID uuid.UUID) error
}

// ListTasks implements the service.TaskService interface.
func (m *MockTaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, userID)
	}
	return nil, nil
}

// CreateTask implements the service.TaskService interface.
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	file io.Reader,
	filename string,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, userID, title, description, file, filename)
	}
	return domain.NewTask(userID, title, description)
}

// GetTask implements the service.TaskService interface.
func (m *MockTaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, userID, taskID)
	}
	return nil, store.ErrTaskNotFound
}

// UpdateTask implements the service.TaskService interface.
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params service.UpdateTaskParams,
) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, userID, taskID, params)
	}
	return nil, store.ErrTaskNotFound
}

// DeleteTask implements the service.TaskService interface.
func (m *MockTaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, userID, taskID)
	}
	return store.ErrTaskNotFound
}

// MockFileService implements service.FileService for testing.
type MockFileService struct {
	UploadFileFn   func(ctx context.Context, userID, taskID uuid.UUID, filename string, content io.Reader) (*domain.Task, error)
	DownloadFileFn func(ctx context.Context, userID uuid.UUID, objectName string) (io.ReadCloser, error)
}

// UploadFile implements the service.FileService interface.
func (m *MockFileService) UploadFile(
	ctx context.Context,
	userID, taskID uuid.UUID,
	filename string,
	content io.Reader,
) (*domain.Task, error) {
	if m.UploadFileFn != nil {
		return m.UploadFileFn(ctx, userID, taskID, filename, content)
	}
	return nil, store.ErrTaskNotFound
}

// DownloadFile implements the service.FileService interface.
func (m *MockFileService) DownloadFile(
	ctx context.Context,
	userID uuid.UUID,
	objectName string,
) (io.ReadCloser, error) {
	if m.DownloadFileFn != nil {
		return m.DownloadFileFn(ctx, userID, objectName)
	}
	return nil, store.ErrTaskNotFound
}
