package api

import (
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/cgvega/taskvault/internal/api/shared"
	"github.com/cgvega/taskvault/internal/platform/logger"
	"github.com/cgvega/taskvault/internal/redact"
	"github.com/cgvega/taskvault/internal/service"
)

// FileHandler handles file upload and download HTTP requests.
type FileHandler struct {
	fileService service.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService, log *slog.Logger) *FileHandler {
	if log == nil {
		log = slog.Default()
	}

	return &FileHandler{
		fileService: fileService,
		logger:      log.With(slog.String("component", "file_handler")),
	}
}

// DownloadFile handles GET /api/files/{name} requests, streaming the named
// object to the caller when one of their tasks references it.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	objectName := chi.URLParam(r, "name")
	if objectName == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "File name is required")
		return
	}

	body, err := h.fileService.DownloadFile(r.Context(), userID, objectName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(objectName)+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		// Headers are already written; all that is left is to log.
		log.Error("failed to stream object to client",
			slog.String("error", redact.Error(err)),
			slog.String("object_name", objectName))
	}
}

// UploadFile handles POST /api/tasks/{id}/file requests, attaching the
// uploaded file to the task and replacing any previous attachment.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "File part is required")
		return
	}
	defer func() { _ = file.Close() }()

	task, err := h.fileService.UploadFile(r.Context(), userID, taskID, header.Filename, file)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
