package commands

import "errors"

var ErrQueueFull = errors.New("command queue full")

// UserError represents an error that should be reported back to the client.
// These are not system failures, just malformed or invalid intents.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
