package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/platform/logger"
	"github.com/cgvega/taskvault/internal/storage"
	"github.com/cgvega/taskvault/internal/store"
)

// FileService provides upload and download of task attachments. Object
// names are the base name of the uploaded filename; ownership is enforced
// through the task that references the object, never by the gateway.
type FileService interface {
	// UploadFile stores content under the base name of filename and
	// attaches it to the user's task, replacing any previous attachment.
	// The old object is deleted only after the new upload and the row
	// update succeed, and its deletion failure is logged and swallowed.
	// Returns the updated task.
	UploadFile(
		ctx context.Context,
		userID, taskID uuid.UUID,
		filename string,
		content io.Reader,
	) (*domain.Task, error)

	// DownloadFile returns a reader over the named object's content,
	// verifying that one of the user's tasks references it. Returns
	// store.ErrTaskNotFound when no owned task references the name and
	// storage.ErrObjectNotFound when the row exists but the object is gone.
	// The caller must close the returned reader.
	DownloadFile(ctx context.Context, userID uuid.UUID, objectName string) (io.ReadCloser, error)
}

// fileServiceImpl implements the FileService interface.
type fileServiceImpl struct {
	taskStore store.TaskStore
	db        *sql.DB
	objects   storage.ObjectStore
	logger    *slog.Logger
}

var _ FileService = (*fileServiceImpl)(nil)

// NewFileService creates a new FileService.
func NewFileService(
	taskStore store.TaskStore,
	db *sql.DB,
	objects storage.ObjectStore,
	log *slog.Logger,
) (FileService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("taskStore cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if objects == nil {
		return nil, fmt.Errorf("objects cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &fileServiceImpl{
		taskStore: taskStore,
		db:        db,
		objects:   objects,
		logger:    log.With(slog.String("component", "file_service")),
	}, nil
}

// ObjectNameFromFilename derives the object key for an uploaded file: the
// base name of the path the client supplied. Returns ErrInvalidFilename
// when no usable base name remains.
func ObjectNameFromFilename(filename string) (string, error) {
	// Clients may send Windows-style paths; normalize before taking the base.
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// UploadFile implements FileService.UploadFile.
func (s *fileServiceImpl) UploadFile(
	ctx context.Context,
	userID, taskID uuid.UUID,
	filename string,
	content io.Reader,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	objectName, err := ObjectNameFromFilename(filename)
	if err != nil {
		return nil, err
	}

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to retrieve task for upload",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("upload_file", "failed to retrieve task", err)
	}

	// Upload before touching the row so the task never references an
	// object that was not stored. Overwrites are allowed: uploading the
	// same name again replaces the content.
	if err := s.objects.PutObject(ctx, objectName, content); err != nil {
		log.Error("failed to upload object",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("upload_file", "failed to upload file", err)
	}

	oldObject := task.ObjectName
	task.ObjectName = objectName
	task.UpdatedAt = time.Now().UTC()

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Update(ctx, task)
	})
	if err != nil {
		if oldObject != objectName {
			s.cleanupObject(ctx, objectName)
		}
		log.Error("failed to attach object to task",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName),
			slog.String("task_id", taskID.String()))
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("upload_file", "failed to update task", err)
	}

	// Replaced attachment: delete the superseded object only after the new
	// upload and the row update both succeeded.
	if oldObject != "" && oldObject != objectName {
		s.cleanupObject(ctx, oldObject)
	}

	log.Info("file attached to task",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.String("object_name", objectName))
	return task, nil
}

// DownloadFile implements FileService.DownloadFile.
func (s *fileServiceImpl) DownloadFile(
	ctx context.Context,
	userID uuid.UUID,
	objectName string,
) (io.ReadCloser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Ownership check: the object is only served if one of the caller's
	// tasks references it.
	if _, err := s.taskStore.GetByObjectName(ctx, userID, objectName); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("no owned task references object",
				slog.String("object_name", objectName),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		log.Error("failed to resolve object owner",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName))
		return nil, NewTaskServiceError("download_file", "failed to resolve object", err)
	}

	body, err := s.objects.GetObject(ctx, objectName)
	if err != nil {
		log.Error("failed to fetch object",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName))
		return nil, err
	}

	return body, nil
}

func (s *fileServiceImpl) cleanupObject(ctx context.Context, objectName string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.objects.DeleteObject(ctx, objectName); err != nil {
		log.Warn("failed to delete orphaned object",
			slog.String("error", err.Error()),
			slog.String("object_name", objectName))
	}
}
