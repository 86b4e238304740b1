package request

import (
	"errors"
	"net/http"
)

// ErrInternalServer is the error shown to clients when a handler fails unexpectedly.
var ErrInternalServer = errors.New("internal server error")

// ClientWriter is a http.ResponseWriter that remembers the status code written to it.
type ClientWriter struct {
	http.ResponseWriter

	statusCode int
}

// NewClientWriter wraps a http.ResponseWriter.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader implements http.ResponseWriter.
func (c *ClientWriter) WriteHeader(code int) {
	c.statusCode = code
	c.ResponseWriter.WriteHeader(code)
}

// StatusCode returns the status code of the response. It is 200 if none was written.
func (c *ClientWriter) StatusCode() int {
	return c.statusCode
}
