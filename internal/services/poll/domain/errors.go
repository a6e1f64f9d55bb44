package domain

import apperrors "github.com/louisbranch/livepoll/internal/platform/errors"

// Sentinel errors returned by the session rules. They compare by code, so
// wrapped or metadata-carrying variants still satisfy errors.Is.
var (
	ErrDuplicateTeacher  = apperrors.New(apperrors.CodeDuplicateTeacher, "a teacher has already joined")
	ErrTeacherNotPresent = apperrors.New(apperrors.CodeTeacherNotPresent, "a teacher has not joined yet")
	ErrInvalidRole       = apperrors.New(apperrors.CodeInvalidRole, "unknown role")
	ErrUnauthorized      = apperrors.New(apperrors.CodeUnauthorized, "only the teacher can ask a question")
	ErrInvalidQuestion   = apperrors.New(apperrors.CodeInvalidQuestion, "invalid question")
	ErrNoActiveQuestion  = apperrors.New(apperrors.CodeNoActiveQuestion, "no active question")
	ErrInvalidOption     = apperrors.New(apperrors.CodeInvalidOption, "invalid answer")
)
