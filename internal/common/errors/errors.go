package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors so the delivery layer can map
// them to user-facing replies without string matching.
type ErrorCode string

const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Giveaway errors
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateID        ErrorCode = "DUPLICATE_ID"
	ErrCodeGiveawayClosed     ErrorCode = "GIVEAWAY_CLOSED"
	ErrCodeStillOpen          ErrorCode = "STILL_OPEN"
	ErrCodeInvalidDuration    ErrorCode = "INVALID_DURATION"
	ErrCodeInvalidWinnerCount ErrorCode = "INVALID_WINNER_COUNT"

	// Infrastructure errors
	ErrCodeStorage    ErrorCode = "STORAGE_ERROR"
	ErrCodeDiscordAPI ErrorCode = "DISCORD_API_ERROR"
)

// AppError is a typed application error carrying a code, a human-readable
// message and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is match on code, so sentinel-style comparisons work:
// errors.Is(err, &AppError{Code: ErrCodeNotFound}).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// CodeOf returns the code of err if it is an AppError, ErrCodeInternal
// otherwise.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Constructors for the common cases.

func NewNotFound(giveawayID string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("giveaway not found: %s", giveawayID))
}

func NewDuplicateID(giveawayID string) *AppError {
	return New(ErrCodeDuplicateID, fmt.Sprintf("giveaway already exists: %s", giveawayID))
}

func NewGiveawayClosed(giveawayID string) *AppError {
	return New(ErrCodeGiveawayClosed, fmt.Sprintf("giveaway has ended: %s", giveawayID))
}

func NewStillOpen(giveawayID string) *AppError {
	return New(ErrCodeStillOpen, fmt.Sprintf("giveaway is still running: %s", giveawayID))
}

func NewInvalidDuration(input string) *AppError {
	return New(ErrCodeInvalidDuration, fmt.Sprintf("invalid duration %q (e.g. 45m, 1h30m, 2d)", input))
}

func NewInvalidWinnerCount(count int) *AppError {
	return New(ErrCodeInvalidWinnerCount, fmt.Sprintf("winner count must be at least 1, got %d", count))
}

func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("store operation failed: %s", operation))
}

func NewDiscordAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDiscordAPI, fmt.Sprintf("discord operation failed: %s", operation))
}
