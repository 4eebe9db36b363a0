package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dreamlister/dreamlister-api/internal/redact"
)

// Response is the envelope every endpoint returns: a human-readable message,
// an optional data payload, and a trace ID for correlating error reports
// with server logs.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// Respond writes a success envelope with the given status code, payload and
// message.
func Respond(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	writeJSON(w, status, Response{
		Data:    data,
		Message: message,
	})
}

// RespondWithError writes an error envelope with the given status code and
// message, carrying the trace ID from the request context when available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	writeJSON(w, status, Response{
		Message: message,
		TraceID: traceID,
	})
}

// RespondWithErrorAndLog writes a sanitized error envelope and logs the full
// (redacted) error detail internally. The raw error string never reaches the
// client; callers pass a fixed user-facing message instead.
//
// Log level strategy: 5xx at ERROR, 4xx at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	writeJSON(w, status, Response{
		Message: userMessage,
		TraceID: traceID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
