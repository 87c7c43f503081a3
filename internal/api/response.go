package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
	"github.com/slmn-lf/east-stress-store/internal/validation"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Count      *int      `json:"count,omitempty"`
	NextCursor string    `json:"next_cursor,omitempty"`
	Cached     bool      `json:"cached,omitempty"`
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any, meta *APIMeta) {
	if meta == nil {
		meta = &APIMeta{}
	}
	meta.Timestamp = time.Now().UTC()
	meta.RequestID = logging.RequestIDFromContext(r.Context())
	writeJSON(w, status, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// fail maps a service error onto a status code. noun names the entity in
// 404 messages.
func fail(w http.ResponseWriter, r *http.Request, err error, noun string) {
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, ve.Error(), ve.Errors())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, noun+" not found", nil)
	case errors.Is(err, preorder.ErrProductUnavailable):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, preorder.ErrProductUnavailable.Error(), nil)
	case errors.Is(err, store.ErrConflict):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, noun+" already exists", nil)
	case errors.Is(err, upload.ErrNoFile), errors.Is(err, upload.ErrNotImage):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.Is(err, upload.ErrTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error(), nil)
	case errors.Is(err, upload.ErrHost):
		respondError(w, r, http.StatusBadGateway, ErrCodeExternalServiceFail, "image upload failed", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal server error", nil)
	}
}
