// Package datasource reads bracket inputs from local files or HTTP endpoints.
package datasource

import (
	"errors"
	"fmt"
)

// SourceError describes a failure reading one input
type SourceError struct {
	Source  string // File path or URL
	Line    int    // 1-based line number, 0 when not applicable
	Code    string // Error code (e.g., "malformed_row")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	where := e.Source
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Err != nil {
		return where + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return where + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeMalformedRow = "malformed_row"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNotFound     = "not_found"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
)

// Error sentinels
var (
	ErrMalformedRow = errors.New("malformed row")
	ErrInvalidData  = errors.New("invalid data format")
	ErrNotFound     = errors.New("data not found")
	ErrNetworkError = errors.New("network error")
	ErrServerError  = errors.New("server error")
)

// NewSourceError creates a new source error
func NewSourceError(source string, line int, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Line:    line,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
