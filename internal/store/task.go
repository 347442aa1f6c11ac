package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/cgvega/taskvault/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every read and write is scoped to an owning user; a task belonging to a
// different user behaves exactly like a missing task.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// ListByUser returns all tasks owned by the given user in creation order.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// GetByID retrieves the task with the given ID owned by userID.
	// Returns ErrTaskNotFound if no such task exists for that user.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// GetByObjectName retrieves the task owned by userID that references
	// the given stored object. Returns ErrTaskNotFound if none does.
	GetByObjectName(ctx context.Context, userID uuid.UUID, objectName string) (*domain.Task, error)

	// Update persists the task's mutable fields (title, description,
	// completed, object name). Returns ErrTaskNotFound if the task does not
	// exist for its owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID owned by userID.
	// Returns ErrTaskNotFound if no such task exists for that user.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
