// Package domain contains the rules of a live polling session.
// This file defines participants and the registry that enforces the single
// teacher invariant. No transport or timing logic belongs here.
package domain

import (
	"strings"

	apperrors "github.com/louisbranch/livepoll/internal/platform/errors"
)

// Role is a participant's self-declared role.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole normalizes a wire role value.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidRole, "unknown role", map[string]string{"role": raw})
	}
}

// Participant is a registered connection.
type Participant struct {
	ConnectionID string
	Role         Role
	Name         string
}

// RegisterOutcome describes a successful register call.
type RegisterOutcome int

const (
	// OutcomeRegistered means the participant was recorded.
	OutcomeRegistered RegisterOutcome = iota + 1
	// OutcomeNeedsName means a student must resend registration with a name.
	// Nothing was recorded.
	OutcomeNeedsName
)

// RegisterResult is returned by Registry.Register.
type RegisterResult struct {
	Outcome RegisterOutcome
	Role    Role
}

// UnregisterResult is returned by Registry.Unregister.
type UnregisterResult struct {
	Removed     bool
	TeacherLeft bool
}

// Registry tracks registered participants and the current teacher.
//
// Registry is not safe for concurrent use; the session coordinator owns it
// and serializes every call.
type Registry struct {
	teacherID    string
	participants map[string]Participant
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]Participant)}
}

// Register records a participant.
//
// Teachers fail with ErrDuplicateTeacher while any teacher is present,
// including a repeat call from the teacher's own connection. Students fail
// with ErrTeacherNotPresent until a teacher has joined, and get
// OutcomeNeedsName when name is blank. A student registering again replaces
// its previous record.
func (r *Registry) Register(connectionID string, role Role, name string) (RegisterResult, error) {
	switch role {
	case RoleTeacher:
		if r.teacherID != "" {
			return RegisterResult{}, ErrDuplicateTeacher
		}
		r.teacherID = connectionID
		r.participants[connectionID] = Participant{ConnectionID: connectionID, Role: RoleTeacher}
		return RegisterResult{Outcome: OutcomeRegistered, Role: RoleTeacher}, nil
	case RoleStudent:
		if r.teacherID == "" {
			return RegisterResult{}, ErrTeacherNotPresent
		}
		if r.teacherID == connectionID {
			return RegisterResult{}, ErrDuplicateTeacher
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return RegisterResult{Outcome: OutcomeNeedsName, Role: RoleStudent}, nil
		}
		r.participants[connectionID] = Participant{ConnectionID: connectionID, Role: RoleStudent, Name: name}
		return RegisterResult{Outcome: OutcomeRegistered, Role: RoleStudent}, nil
	default:
		return RegisterResult{}, ErrInvalidRole
	}
}

// Unregister removes a participant. Unknown connections are a no-op.
func (r *Registry) Unregister(connectionID string) UnregisterResult {
	if _, ok := r.participants[connectionID]; !ok {
		return UnregisterResult{}
	}
	delete(r.participants, connectionID)
	if r.teacherID != connectionID {
		return UnregisterResult{Removed: true}
	}
	r.teacherID = ""
	return UnregisterResult{Removed: true, TeacherLeft: true}
}

// IsTeacher reports whether connectionID is the current teacher.
func (r *Registry) IsTeacher(connectionID string) bool {
	return connectionID != "" && r.teacherID == connectionID
}

// HasTeacher reports whether a teacher is registered.
func (r *Registry) HasTeacher() bool {
	return r.teacherID != ""
}

// Participant looks up a registered connection.
func (r *Registry) Participant(connectionID string) (Participant, bool) {
	p, ok := r.participants[connectionID]
	return p, ok
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	return len(r.participants)
}
