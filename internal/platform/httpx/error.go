// Package httpx carries the JSON error envelope shared by every handler.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumenweb/api/internal/platform/requestctx"
)

const (
	maxCodeLen    = 80
	maxMessageLen = 512
	maxTraceLen   = 64
)

// Error describes an API failure in the canonical envelope. Code is a stable
// machine-readable identifier, Message is safe to show to callers.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error, clamping code and message to envelope limits.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clean(code, maxCodeLen),
		Message: clean(message, maxMessageLen),
		Status:  status,
	}
}

// WithDetails returns a copy of the error carrying extra envelope fields.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(details))
	for key, value := range details {
		merged[key] = value
	}
	e.Details = merged
	return e
}

type errorEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteError renders the envelope, stamping request and trace identifiers
// from the context so failures correlate with logs.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	envelope := errorEnvelope{
		Error:     err.Code,
		Message:   err.Message,
		Status:    status,
		RequestID: clean(middleware.GetReqID(ctx), maxCodeLen),
		TraceID:   clean(requestctx.TraceID(ctx), maxTraceLen),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(err.Details) == 0 {
		_ = json.NewEncoder(w).Encode(envelope)
		return
	}

	// Details merge into the top level of the envelope.
	flat := map[string]any{
		"error":   envelope.Error,
		"message": envelope.Message,
		"status":  envelope.Status,
	}
	if envelope.RequestID != "" {
		flat["request_id"] = envelope.RequestID
	}
	if envelope.TraceID != "" {
		flat["trace_id"] = envelope.TraceID
	}
	for key, value := range err.Details {
		flat[key] = value
	}
	_ = json.NewEncoder(w).Encode(flat)
}

func clean(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(value))
	if limit > 0 && len(value) > limit {
		value = value[:limit]
	}
	return value
}
