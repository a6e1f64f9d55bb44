package server

import (
	apperrors "github.com/louisbranch/livepoll/internal/platform/errors"
	"github.com/louisbranch/livepoll/internal/services/poll/domain"
)

// Wire names of inbound frames.
const (
	TypeRegister     = "register"
	TypeAskQuestion  = "ask-question"
	TypeSubmitAnswer = "submit-answer"
	TypeGetLiveVotes = "get-live-votes"
	TypeDisconnect   = "disconnect"
)

// Wire names of outbound frames.
const (
	TypeRegistered          = "registered"
	TypeError               = "error"
	TypeNewQuestion         = "new-question"
	TypeTimeUp              = "time-up"
	TypeUpdateVotes         = "update-votes"
	TypeTeacherDisconnected = "teacher-disconnected"
)

// NeedsStudentName is the registered payload asking a student to resend
// registration with a name.
const NeedsStudentName = "get_student_name"

// Inbound is a request the coordinator handles. The set of implementations is
// closed; every one of them has a case in Coordinator.apply.
type Inbound interface {
	Type() string
	inbound()
}

// Register declares a connection's role.
type Register struct {
	Role string
	Name string
}

// AskQuestion starts a new question, replacing any active one.
type AskQuestion struct {
	Text             string
	Options          []string
	TimeLimitSeconds int
}

// SubmitAnswer casts one vote for an option label.
type SubmitAnswer struct {
	Answer string
}

// GetLiveVotes asks for the active tally.
type GetLiveVotes struct{}

// Disconnect reports that a connection closed.
type Disconnect struct{}

// timerExpired carries a question expiry back onto the event loop.
type timerExpired struct {
	fire func()
}

func (Register) Type() string     { return TypeRegister }
func (AskQuestion) Type() string  { return TypeAskQuestion }
func (SubmitAnswer) Type() string { return TypeSubmitAnswer }
func (GetLiveVotes) Type() string { return TypeGetLiveVotes }
func (Disconnect) Type() string   { return TypeDisconnect }
func (timerExpired) Type() string { return "expire" }

func (Register) inbound()     {}
func (AskQuestion) inbound()  {}
func (SubmitAnswer) inbound() {}
func (GetLiveVotes) inbound() {}
func (Disconnect) inbound()   {}
func (timerExpired) inbound() {}

// Outbound is a message the coordinator emits through a Gateway. The set of
// implementations is closed; encodeOutbound handles each of them.
type Outbound interface {
	Type() string
	outbound()
}

// Registered acknowledges a register request. Role is "teacher", "student"
// or NeedsStudentName.
type Registered struct {
	RequestID string
	Role      string
}

// ErrorMessage reports a rejected request to its sender only. The text is
// rendered per connection locale when the frame is written.
type ErrorMessage struct {
	RequestID string
	Code      apperrors.Code
	Metadata  map[string]string
}

// NewQuestion announces a question to every connection.
type NewQuestion struct {
	Text             string
	Options          []string
	TimeLimitSeconds int
}

// TimeUp announces that the active question expired.
type TimeUp struct{}

// UpdateVotes carries a tally snapshot. RequestID is set only when the
// snapshot answers a get-live-votes request.
type UpdateVotes struct {
	RequestID string
	Votes     domain.Snapshot
}

// TeacherDisconnected announces that the teacher left.
type TeacherDisconnected struct{}

func (Registered) Type() string          { return TypeRegistered }
func (ErrorMessage) Type() string        { return TypeError }
func (NewQuestion) Type() string         { return TypeNewQuestion }
func (TimeUp) Type() string              { return TypeTimeUp }
func (UpdateVotes) Type() string         { return TypeUpdateVotes }
func (TeacherDisconnected) Type() string { return TypeTeacherDisconnected }

func (Registered) outbound()          {}
func (ErrorMessage) outbound()        {}
func (NewQuestion) outbound()         {}
func (TimeUp) outbound()              {}
func (UpdateVotes) outbound()         {}
func (TeacherDisconnected) outbound() {}
