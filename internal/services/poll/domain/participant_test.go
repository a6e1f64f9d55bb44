package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func TestRegisterTeacherThenDuplicate(t *testing.T) {
	registry := NewRegistry()

	result, err := registry.Register("conn-1", RoleTeacher, "")
	if err != nil {
		t.Fatalf("register teacher: %v", err)
	}
	if result.Outcome != OutcomeRegistered || result.Role != RoleTeacher {
		t.Fatalf("unexpected result %+v", result)
	}
	if !registry.IsTeacher("conn-1") {
		t.Fatal("expected conn-1 to be teacher")
	}

	if _, err := registry.Register("conn-2", RoleTeacher, ""); !errors.Is(err, ErrDuplicateTeacher) {
		t.Fatalf("expected duplicate teacher, got %v", err)
	}
	if _, err := registry.Register("conn-1", RoleTeacher, ""); !errors.Is(err, ErrDuplicateTeacher) {
		t.Fatalf("expected duplicate teacher for repeat registration, got %v", err)
	}
	if registry.IsTeacher("conn-2") {
		t.Fatal("rejected teacher must not become teacher")
	}
}

func TestRegisterStudentRequiresTeacher(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Register("conn-1", RoleStudent, "Ann"); !errors.Is(err, ErrTeacherNotPresent) {
		t.Fatalf("expected teacher not present, got %v", err)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected no participants, got %d", registry.Len())
	}
}

func TestRegisterStudentNameHandshake(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, "teacher", RoleTeacher, "")

	result, err := registry.Register("student", RoleStudent, "   ")
	if err != nil {
		t.Fatalf("register nameless student: %v", err)
	}
	if result.Outcome != OutcomeNeedsName {
		t.Fatalf("expected needs name, got %+v", result)
	}
	if _, ok := registry.Participant("student"); ok {
		t.Fatal("nameless student must not be recorded")
	}

	result, err = registry.Register("student", RoleStudent, " Ann ")
	if err != nil {
		t.Fatalf("register named student: %v", err)
	}
	if result.Outcome != OutcomeRegistered || result.Role != RoleStudent {
		t.Fatalf("unexpected result %+v", result)
	}
	participant, ok := registry.Participant("student")
	if !ok {
		t.Fatal("expected student to be recorded")
	}
	if participant.Name != "Ann" {
		t.Fatalf("expected trimmed name, got %q", participant.Name)
	}
}

func TestRegisterStudentReplacesOwnRecord(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, "teacher", RoleTeacher, "")
	mustRegister(t, registry, "student", RoleStudent, "Ann")
	mustRegister(t, registry, "student", RoleStudent, "Annie")

	if registry.Len() != 2 {
		t.Fatalf("expected two participants, got %d", registry.Len())
	}
	participant, _ := registry.Participant("student")
	if participant.Name != "Annie" {
		t.Fatalf("expected replaced name, got %q", participant.Name)
	}
}

func TestTeacherCannotReregisterAsStudent(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, "teacher", RoleTeacher, "")

	if _, err := registry.Register("teacher", RoleStudent, "Sneaky"); !errors.Is(err, ErrDuplicateTeacher) {
		t.Fatalf("expected duplicate teacher, got %v", err)
	}
	if !registry.IsTeacher("teacher") {
		t.Fatal("teacher must keep the role")
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Register("conn", Role("principal"), ""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func TestUnregisterTeacherFreesSlot(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, "teacher", RoleTeacher, "")
	mustRegister(t, registry, "student", RoleStudent, "Ann")

	result := registry.Unregister("teacher")
	if !result.Removed || !result.TeacherLeft {
		t.Fatalf("expected teacher left, got %+v", result)
	}
	if registry.HasTeacher() {
		t.Fatal("expected no teacher")
	}
	if _, ok := registry.Participant("student"); !ok {
		t.Fatal("students must survive the teacher leaving")
	}

	if _, err := registry.Register("new-teacher", RoleTeacher, ""); err != nil {
		t.Fatalf("expected new teacher to register, got %v", err)
	}
}

func TestUnregisterStudentAndUnknown(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, "teacher", RoleTeacher, "")
	mustRegister(t, registry, "student", RoleStudent, "Ann")

	if result := registry.Unregister("student"); !result.Removed || result.TeacherLeft {
		t.Fatalf("unexpected student unregister result %+v", result)
	}
	if result := registry.Unregister("ghost"); result.Removed || result.TeacherLeft {
		t.Fatalf("unexpected unknown unregister result %+v", result)
	}
	if !registry.HasTeacher() {
		t.Fatal("teacher must remain")
	}
}

func TestIsTeacherRejectsEmptyConnection(t *testing.T) {
	registry := NewRegistry()
	if registry.IsTeacher("") {
		t.Fatal("empty connection id must never be teacher")
	}
}

func TestRegistryNeverHoldsTwoTeachers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	registry := NewRegistry()
	roles := []Role{RoleTeacher, RoleStudent}

	for step := 0; step < 2000; step++ {
		conn := fmt.Sprintf("conn-%d", rng.Intn(8))
		if rng.Intn(4) == 0 {
			registry.Unregister(conn)
		} else {
			_, _ = registry.Register(conn, roles[rng.Intn(len(roles))], "name")
		}

		teachers := 0
		for i := 0; i < 8; i++ {
			id := fmt.Sprintf("conn-%d", i)
			if p, ok := registry.Participant(id); ok && p.Role == RoleTeacher {
				teachers++
			}
		}
		if teachers > 1 {
			t.Fatalf("step %d: found %d teachers", step, teachers)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{raw: "teacher", want: RoleTeacher},
		{raw: " Student ", want: RoleStudent},
		{raw: "", wantErr: true},
		{raw: "admin", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Fatalf("ParseRole(%q) error = %v, want invalid role", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func mustRegister(t *testing.T, registry *Registry, conn string, role Role, name string) {
	t.Helper()
	if _, err := registry.Register(conn, role, name); err != nil {
		t.Fatalf("register %s as %s: %v", conn, role, err)
	}
}
