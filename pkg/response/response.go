// Package response writes the JSON envelope every endpoint returns.
//
// The storefront and admin clients key off the "success" boolean; machine
// consumers key off the stable "code" string. Real HTTP status codes are
// always set alongside — the envelope never substitutes for them.
package response

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes (see the error taxonomy in DESIGN.md).
const (
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidToken    = "invalid_token"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeValidation      = "validation_error"
	CodeUpstream        = "upstream_failure"
	CodeInternal        = "internal_error"
)

type envelope struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Message sends a 200 with a human-readable message and no data.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Error sends a JSON error response with a stable code.
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Success: false, Code: code, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Code:    CodeValidation,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthenticated sends a 401 for a request with no credential at all.
func Unauthenticated(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required")
}

// InvalidToken sends a 401 for a credential that was supplied but rejected.
func InvalidToken(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, CodeInvalidToken, "Invalid or expired token")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, CodeForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

// Upstream sends a 502 for an unreachable external collaborator.
func Upstream(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, CodeUpstream, message)
}
