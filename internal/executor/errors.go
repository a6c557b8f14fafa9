package executor

import (
	"errors"
	"fmt"

	"github.com/roach88/rightstroke/internal/gesture"
)

// ErrorCode categorizes action failures.
type ErrorCode string

const (
	// ErrCodeInvalidTab indicates there is no tab to act on.
	ErrCodeInvalidTab ErrorCode = "INVALID_TAB"

	// ErrCodeUnknownAction indicates the action is not recognized.
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// ErrCodeNoHistory indicates back was requested with empty history.
	ErrCodeNoHistory ErrorCode = "NO_HISTORY"

	// ErrCodeUnavailable indicates the action channel is not present.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// ActionError is returned when an action cannot be carried out.
type ActionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Action is the action that failed.
	Action gesture.Action

	// TabID is the tab involved, if any.
	TabID int
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	if e.TabID != 0 {
		return fmt.Sprintf("%s: %s (action=%s, tab=%d)", e.Code, e.Message, e.Action, e.TabID)
	}
	if e.Action != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode of err, or "" if err is nil or not an
// ActionError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsInvalidTab returns true if the error is an INVALID_TAB error.
func IsInvalidTab(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTab
}

// IsUnknownAction returns true if the error is an UNKNOWN_ACTION error.
func IsUnknownAction(err error) bool {
	return CodeOf(err) == ErrCodeUnknownAction
}

// IsNoHistory returns true if the error is a NO_HISTORY error.
func IsNoHistory(err error) bool {
	return CodeOf(err) == ErrCodeNoHistory
}

// IsUnavailable returns true if the error is an UNAVAILABLE error.
func IsUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeUnavailable
}

func newInvalidTab(action gesture.Action) *ActionError {
	return &ActionError{Code: ErrCodeInvalidTab, Message: "invalid tab", Action: action}
}

func newUnknownAction(action gesture.Action) *ActionError {
	return &ActionError{
		Code:    ErrCodeUnknownAction,
		Message: fmt.Sprintf("unknown action: %s", action),
		Action:  action,
	}
}
