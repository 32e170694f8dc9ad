package adapter

import "fmt"

// ErrorCode is a stable, provider-independent failure code. The command
// service maps these onto adapter-sync faults.
type ErrorCode string

const (
	ErrCodeUnsupportedType ErrorCode = "unsupported_schedule_type"
	ErrCodeUnsupportedUnit ErrorCode = "unsupported_interval_unit"
	ErrCodeInvalidPayload  ErrorCode = "invalid_payload"
	ErrCodeUnknownSchedule ErrorCode = "unknown_schedule"
	ErrCodeProviderDown    ErrorCode = "provider_unavailable"
)

// Error is a coded provider failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
