package internal

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CodeCredentials      ErrorCode = "CREDENTIALS_ERROR"
	CodeMissingConfig    ErrorCode = "MISSING_CONFIG"
	CodeAPI              ErrorCode = "API_ERROR"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeNoData           ErrorCode = "NO_DATA"
	CodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"
	CodeMissingColumn    ErrorCode = "MISSING_COLUMN"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeLoad             ErrorCode = "LOAD_ERROR"
	CodeSave             ErrorCode = "SAVE_ERROR"
	CodeUnknown          ErrorCode = "UNKNOWN_ERROR"
)

// SyncError is a fatal pipeline failure. Code is what the CLI reports.
type SyncError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, format string, args ...any) error {
	return &SyncError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func WrapError(code ErrorCode, err error, format string, args ...any) error {
	return &SyncError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the outermost SyncError in err's chain.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Code
	}
	return CodeUnknown
}

// MissingColumnError names required fields that no header resolved to.
type MissingColumnError struct {
	Table  string
	Fields []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column in %s tab: %s", e.Table, strings.Join(e.Fields, ", "))
}

func IsRateLimit(err error) bool {
	return CodeOf(err) == CodeRateLimit
}
