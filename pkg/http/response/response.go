package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error sending response", "error", err)
	}
}

// WriteError maps a service error onto a status code. Internal details of 5xx errors are
// logged and replaced by a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.Internal("internal error", err)
	}

	status := StatusOf(e.Kind)
	body := ErrorBody{Error: e.Message, Code: e.Code, Fields: e.Fields}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", e.Code,
			"error", err)
		body = ErrorBody{Error: "internal server error", Code: e.Code}
	} else {
		slog.DebugContext(r.Context(), "Request rejected", "code", e.Code, "error", err)
	}

	WriteJSON(w, r, status, body)
}

// StatusOf returns the HTTP status for an error kind.
func StatusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
