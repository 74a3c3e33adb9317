// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/people-api/internal/apperror"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a person, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "Name is required", "fields": [...] }
type Response struct {
	Status string                    `json:"status"`
	Error  string                    `json:"error,omitempty"`
	Fields []apperror.FieldViolation `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
		Fields: apperror.FieldsOf(err),
	}
}

// StatusFor maps an error kind to the HTTP status the client receives.
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindInvalidArgument:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status its kind maps to.
func Error(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusFor(err), GeneralError(err))
}
