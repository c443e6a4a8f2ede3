package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xacademy/academy/core"
)

// Error is a non-2xx response from the backend.
// Code carries the backend "error" field, Message its "message" field.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api %d: %s", e.Status, e.Message)
	case e.Code != "":
		return fmt.Sprintf("api %d: %s", e.Status, e.Code)
	default:
		return fmt.Sprintf("api %d: %s", e.Status, http.StatusText(e.Status))
	}
}

// Unwrap lets errors.Is match 401 responses against core.ErrNotAuthenticated
func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return core.ErrNotAuthenticated
	}
	return nil
}

// Detail returns the text the backend wants shown to the user, if any
func (e *Error) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// errorBody is the backend error envelope
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// StatusOf returns the HTTP status carried by err, 0 when it is not an *Error
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
