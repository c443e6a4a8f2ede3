package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// abort writes the backend error envelope {error, message, statusCode}
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      http.StatusText(status),
		"message":    message,
		"statusCode": status,
	})
}

// statusError carries the response a handler should send for a domain failure
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func notFound(what string) error {
	return &statusError{status: http.StatusNotFound, message: what + " not found"}
}

func forbidden(message string) error {
	return &statusError{status: http.StatusForbidden, message: message}
}

func conflict(message string) error {
	return &statusError{status: http.StatusConflict, message: message}
}

func badRequest(message string) error {
	return &statusError{status: http.StatusBadRequest, message: message}
}

// fail maps err to the error envelope; unknown errors become 500
func fail(c *gin.Context, err error) {
	var se *statusError
	if errors.As(err, &se) {
		abort(c, se.status, se.message)
		return
	}
	_ = c.Error(err)
	abort(c, http.StatusInternalServerError, "Internal server error")
}
