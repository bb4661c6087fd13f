package suno

import (
	"errors"
	"fmt"
)

// The client classifies every failed call into exactly one of the error
// kinds below. Only NetworkError and RateLimitError are retried; everything
// else propagates on first occurrence.

// AuthenticationError indicates missing or rejected credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("suno: authentication failed: %s", e.Message)
}

// RateLimitError indicates the provider throttled the call.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("suno: rate limited: %s", e.Message)
}

// QuotaExceededError indicates the account is out of generation credits.
// Retrying cannot help.
type QuotaExceededError struct {
	Message string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("suno: quota exceeded: %s", e.Message)
}

// NotFoundError indicates the referenced task or resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("suno: not found: %s", e.Resource)
}

// NetworkError wraps connection and timeout failures below the HTTP layer.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("suno: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError covers any other non-2xx response or malformed payload. It
// carries the HTTP status and raw body for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("suno: api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("suno: api error (status %d): %s", e.StatusCode, e.Body)
}

// TaskFailedError reports that the remote task itself failed, as opposed to
// a transport failure reaching the API.
type TaskFailedError struct {
	TaskID string
	Reason string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("suno: task %s failed: %s", e.TaskID, e.Reason)
}

// Retryable reports whether the classified error is worth another attempt.
func Retryable(err error) bool {
	var netErr *NetworkError
	var rateErr *RateLimitError
	return errors.As(err, &netErr) || errors.As(err, &rateErr)
}
