package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/hbnb-api/internal/services"
)

// MaxBodyBytes bounds every decoded request body.
const MaxBodyBytes = 1 << 20

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// DecodeJSON reads a single JSON object into dst and rejects unknown keys.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func WriteBadRequest(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
}

// WriteServiceError maps catalog error kinds to status codes. A permission
// failure for an anonymous caller is reported as 401.
func WriteServiceError(w http.ResponseWriter, err error, anonymous bool) {
	var se *services.Error
	errors.As(err, &se)

	switch {
	case errors.Is(err, services.ErrValidation):
		var details interface{}
		if se != nil && len(se.Fields) > 0 {
			details = se.Fields
		}
		WriteError(w, http.StatusBadRequest, "validation_error", message(se, "validation failed"), details)
	case errors.Is(err, services.ErrPermissionDenied) && anonymous:
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
	case errors.Is(err, services.ErrPermissionDenied):
		WriteError(w, http.StatusForbidden, "forbidden", message(se, "permission denied"), nil)
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", message(se, "not found"), nil)
	case errors.Is(err, services.ErrDuplicate):
		WriteError(w, http.StatusConflict, "duplicate", message(se, "already exists"), nil)
	default:
		slog.Error("unhandled error", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func message(se *services.Error, fallback string) string {
	if se != nil && se.Msg != "" {
		return se.Msg
	}
	return fallback
}
