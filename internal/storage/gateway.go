// Package storage defines the capability interfaces that isolate the rest
// of the system from the object-storage and queue vendor SDKs. Concrete
// implementations live under internal/platform/awsx.
package storage

import (
	"context"
	"errors"
	"io"
)

// Gateway errors. Any backend/network failure surfaces as
// ErrStorageUnavailable; callers decide whether to retry — the gateway
// itself never retries.
var (
	// ErrObjectNotFound is returned when a requested object does not exist
	// in the bucket.
	ErrObjectNotFound = errors.New("object not found")

	// ErrStorageUnavailable is returned when the storage or queue backend
	// call fails for reasons other than a missing object.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ObjectStore is the capability interface over the object-storage backend.
type ObjectStore interface {
	// PutObject stores body under the given object name, overwriting any
	// existing object with that name (last write wins).
	PutObject(ctx context.Context, name string, body io.Reader) error

	// GetObject returns a reader over the object's content.
	// Returns ErrObjectNotFound if the object does not exist.
	// The caller must close the returned reader.
	GetObject(ctx context.Context, name string) (io.ReadCloser, error)

	// ObjectExists reports whether an object with the given name exists.
	ObjectExists(ctx context.Context, name string) (bool, error)

	// DeleteObject removes the object. Deleting an absent object is not an
	// error.
	DeleteObject(ctx context.Context, name string) error
}

// Message is a single notification received from the queue. ReceiptHandle
// identifies the in-flight delivery and is required to acknowledge it.
type Message struct {
	ID            string
	Body          string
	Attributes    map[string]string
	ReceiptHandle string
}

// NotificationQueue is the capability interface over the message queue.
type NotificationQueue interface {
	// EnqueueNotification sends a message with the given string attributes
	// and body, returning the queue-assigned message ID.
	EnqueueNotification(ctx context.Context, attributes map[string]string, body string) (string, error)

	// DequeueNotification fetches at most one message from the queue.
	// Returns (nil, nil) when the queue is empty. The message stays
	// in flight until acknowledged.
	DequeueNotification(ctx context.Context) (*Message, error)

	// AckNotification removes a previously dequeued message from the queue
	// after successful processing.
	AckNotification(ctx context.Context, msg *Message) error
}
