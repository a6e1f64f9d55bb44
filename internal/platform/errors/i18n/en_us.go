package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown           = "UNKNOWN"
	CodeDuplicateTeacher  = "DUPLICATE_TEACHER"
	CodeTeacherNotPresent = "TEACHER_NOT_PRESENT"
	CodeInvalidRole       = "INVALID_ROLE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidQuestion   = "INVALID_QUESTION"
	CodeNoActiveQuestion  = "NO_ACTIVE_QUESTION"
	CodeInvalidOption     = "INVALID_OPTION"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeResourceExhausted = "RESOURCE_EXHAUSTED"
)

var enUSMessages = map[Code]string{
	CodeUnknown:           "Something went wrong.",
	CodeDuplicateTeacher:  "A teacher has already joined.",
	CodeTeacherNotPresent: "A teacher has not joined yet.",
	CodeInvalidRole:       "Unknown role.",
	CodeUnauthorized:      "Only the teacher can ask a question.",
	CodeInvalidQuestion:   "Invalid question.",
	CodeNoActiveQuestion:  "No active question.",
	CodeInvalidOption:     "Invalid answer.",
	CodeInvalidArgument:   "Invalid request: {{.reason}}.",
	CodeResourceExhausted: "Too many requests.",
}
