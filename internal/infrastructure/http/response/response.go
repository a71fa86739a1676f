package response

import (
	"encoding/json"
	"net/http"
)

// StatusClientClosedRequest is the nginx convention for a request the client
// abandoned before the response was written
const StatusClientClosedRequest = 499

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// NoContent sends an empty 204 response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	ValidationError(w, status, err, nil)
}

// ValidationError sends an error response with per-field details
func ValidationError(w http.ResponseWriter, status int, err error, details map[string]string) {
	JSON(w, status, ErrorResponse{
		Error:   errorType(status),
		Message: err.Error(),
		Details: details,
	})
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusInternalServerError:
		return "internal_server_error"
	case http.StatusGatewayTimeout:
		return "timeout"
	case StatusClientClosedRequest:
		return "client_closed_request"
	}
	return "error"
}
