package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
)

const retryAfterSeconds = "1"

// ApiErrorResponse is the body of every non-2xx response.
type ApiErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindBusinessRule, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests
	case apperr.KindLockTimeout:
		return http.StatusConflict
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

// RespondError maps err to its status and writes an ApiErrorResponse.
// Internal causes are logged, never sent.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := StatusOf(appErr.Kind)

	entry := logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"code":   appErr.Kind.String(),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(appErr.Err).Error("request failed")
	} else {
		entry.Debug(appErr.Message)
	}

	if appErr.Kind.Retryable() {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	RespondJSON(w, status, ApiErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Code:      appErr.Kind.String(),
		Message:   appErr.Message,
		Path:      r.URL.Path,
	})
}
