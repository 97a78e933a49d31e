package web

import (
	"encoding/json"
	"net/http"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeNoData           ErrorCode = "NO_DATA"
	ErrCodeRefreshFailed    ErrorCode = "REFRESH_FAILED"
	ErrCodeRefreshDisabled  ErrorCode = "REFRESH_DISABLED"
	ErrCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// APIError is an error with the HTTP status it maps to.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

func newAPIError(code ErrorCode, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

func errNoData() *APIError {
	return newAPIError(ErrCodeNoData, "no match data loaded yet", http.StatusServiceUnavailable)
}

func errRefreshFailed(err error) *APIError {
	return newAPIError(ErrCodeRefreshFailed, "refresh failed: "+err.Error(), http.StatusBadGateway)
}

func errInternal() *APIError {
	return newAPIError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError)
}

// writeError writes e as a JSON error response.
func writeError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// writeJSON writes v with status 200.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
