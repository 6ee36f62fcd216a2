package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wikid/pkg/wikierr"
)

// FormatMode renders mode bits as the octal string clients send and
// receive, e.g. 0o644 -> "644".
func FormatMode(mode uint16) string {
	return strconv.FormatUint(uint64(mode), 8)
}

// JSONError writes a JSON error response with the given status code and
// message. It ensures the Content-Type is set to application/json.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONWrite writes the provided value as JSON with the given status code.
func JSONWrite(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	return json.NewEncoder(w).Encode(v)
}

// ErrorStatus maps an error kind to its HTTP status. Auth and access
// failures report distinctly from not-found, which reports distinctly from
// internal storage failure.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, wikierr.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, wikierr.ErrAccess):
		return http.StatusForbidden
	case errors.Is(err, wikierr.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err with its mapped status.
func WriteError(w http.ResponseWriter, err error) {
	JSONError(w, ErrorStatus(err), err.Error())
}
