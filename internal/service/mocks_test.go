package service

import (
	"context"
	"database/sql"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/storage"
	"github.com/cgvega/taskvault/internal/store"
)

// MockTaskStore mocks the store.TaskStore interface.
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByObjectName(
	ctx context.Context,
	userID uuid.UUID,
	objectName string,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, objectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

// WithTx returns the mock itself; transaction plumbing is exercised through
// sqlmock's Begin/Commit expectations.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockObjectStore mocks the storage.ObjectStore interface.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, name string, body io.Reader) error {
	args := m.Called(ctx, name, body)
	return args.Error(0)
}

func (m *MockObjectStore) GetObject(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStore) ObjectExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) DeleteObject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockNotificationQueue mocks the storage.NotificationQueue interface.
type MockNotificationQueue struct {
	mock.Mock
}

func (m *MockNotificationQueue) EnqueueNotification(
	ctx context.Context,
	attributes map[string]string,
	body string,
) (string, error) {
	args := m.Called(ctx, attributes, body)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationQueue) DequeueNotification(ctx context.Context) (*storage.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Message), args.Error(1)
}

func (m *MockNotificationQueue) AckNotification(ctx context.Context, msg *storage.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
