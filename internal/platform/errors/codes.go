// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Registration errors
	CodeDuplicateTeacher  Code = "DUPLICATE_TEACHER"
	CodeTeacherNotPresent Code = "TEACHER_NOT_PRESENT"
	CodeInvalidRole       Code = "INVALID_ROLE"

	// Question errors
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInvalidQuestion  Code = "INVALID_QUESTION"
	CodeNoActiveQuestion Code = "NO_ACTIVE_QUESTION"
	CodeInvalidOption    Code = "INVALID_OPTION"

	// Transport errors
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeResourceExhausted Code = "RESOURCE_EXHAUSTED"
)

// Retryable reports whether a client may resend the same request later and
// expect a different outcome.
func (c Code) Retryable() bool {
	switch c {
	case CodeTeacherNotPresent, CodeNoActiveQuestion, CodeResourceExhausted:
		return true
	default:
		return false
	}
}
