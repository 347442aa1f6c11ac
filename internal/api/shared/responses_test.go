package shared

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	assert.Len(t, traceID, TraceIDLength*2)

	// IDs are unique per call.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	// No trace ID set.
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestRespondWithError_IncludesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	recorder := httptest.NewRecorder()

	RespondWithError(recorder, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "Task not found", resp.Error)
	assert.Equal(t, GetTraceID(req.Context()), resp.TraceID)
}

func TestRespondWithErrorAndLog_HidesRawError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	recorder := httptest.NewRecorder()

	RespondWithErrorAndLog(recorder, req, http.StatusInternalServerError,
		"An unexpected error occurred", assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), assert.AnError.Error())
	assert.Contains(t, recorder.Body.String(), "An unexpected error occurred")
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `validate:"required"`
	}

	assert.NoError(t, ValidateRequest(payload{Name: "x"}))
	assert.Error(t, ValidateRequest(payload{}))
}
