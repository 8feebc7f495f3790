package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the API.
// Code is set when the body carried a machine-readable error code.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// APIError is a well-formed response whose envelope reports failure.
// Data holds the raw data field, which some endpoints use for a message.
type APIError struct {
	Code    string
	Message string
	Data    json.RawMessage
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.DataText()
	}
	if msg == "" {
		msg = "request failed"
	}
	if e.Code == "" {
		return "api: " + msg
	}
	return fmt.Sprintf("api: %s (code: %s)", msg, e.Code)
}

// DataText returns the data field as text: a JSON string is unquoted, any
// other value is returned as raw JSON, and null or absent yields "".
func (e *APIError) DataText() string {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(e.Data, &s) == nil {
		return s
	}
	return string(e.Data)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsCode returns true if err (or any wrapped error) is an APIError or HTTPError
// carrying the given business code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == code
	}
	return false
}

// ErrorCode extracts the business code from err, or "" if it has none.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return ""
}
