// Package response centralizes the JSON envelope and domain-error
// translation so every handler answers in the same shape.
package response

import (
	"encoding/json"
	"net/http"

	dErrors "sams/pkg/domain-errors"
)

// Envelope is the uniform response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with data.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: "success", Data: data})
}

// OKMessage writes a success envelope with a message and data.
func OKMessage(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// Err translates a tagged domain error to its HTTP status and envelope.
// Untagged errors become opaque 500s; their details stay in the logs.
func Err(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeStoreFailure {
		message = "internal server error"
	}
	write(w, dErrors.ToHTTPStatus(code), Envelope{
		Status:  "error",
		Error:   string(code),
		Message: message,
	})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
