package common

import (
	"encoding/json"
	"net/http"
	"time"
)

// FailureBody is the canonical error payload of the calculation API.
type FailureBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONFailure renders the calculator's failure shape: a single-line message
// with success:false and a timestamp, no internal detail.
func JSONFailure(w http.ResponseWriter, status int, message string) {
	JSON(w, status, FailureBody{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
