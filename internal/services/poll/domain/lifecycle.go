package domain

import "time"

// Timer is a pending expiry that can be cancelled.
type Timer interface {
	// Stop prevents the timer from firing. It reports false when the timer
	// already fired or was stopped.
	Stop() bool
}

// Scheduler arms expiry timers.
//
// Implementations must run fn on the same serialized event stream as every
// other Lifecycle call; the lifecycle never synchronizes on its own.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// TeacherChecker authorizes question requests.
type TeacherChecker interface {
	IsTeacher(connectionID string) bool
}

// Lifecycle owns the current question, its tally and its expiry timer.
//
// The three are present together or absent together. Each question carries a
// round number; an expiry callback whose round is no longer current is
// dropped, so a superseded question can never clear its successor even when
// its timer fired before it could be stopped.
type Lifecycle struct {
	teachers  TeacherChecker
	scheduler Scheduler

	round    uint64
	question *Question
	tally    *Tally
	timer    Timer
	votesBy  map[string]int
}

// NewLifecycle returns an idle lifecycle.
func NewLifecycle(teachers TeacherChecker, scheduler Scheduler) *Lifecycle {
	return &Lifecycle{
		teachers:  teachers,
		scheduler: scheduler,
	}
}

// AskQuestion replaces any active question with a new one.
//
// It fails with ErrUnauthorized unless requesterID is the current teacher and
// with ErrInvalidQuestion when spec does not validate. On success the previous
// timer is stopped before the new one is armed; after the time limit the
// question, tally and timer are cleared and emitTimeUp receives the expired
// question.
func (l *Lifecycle) AskQuestion(requesterID string, spec QuestionSpec, emitTimeUp func(Question)) (Question, error) {
	if l.teachers == nil || !l.teachers.IsTeacher(requesterID) {
		return Question{}, ErrUnauthorized
	}
	if err := spec.Validate(); err != nil {
		return Question{}, err
	}

	l.stopTimer()

	l.round++
	round := l.round
	question := newQuestion(round, spec)
	l.question = &question
	l.tally = NewTally(question.Options)
	l.votesBy = make(map[string]int)
	l.timer = l.scheduler.AfterFunc(question.TimeLimit(), func() {
		l.expire(round, emitTimeUp)
	})
	return question, nil
}

// SubmitAnswer counts one vote for label and returns the updated tally.
// The same connection may vote any number of times.
func (l *Lifecycle) SubmitAnswer(connectionID string, label string) (Snapshot, error) {
	if l.question == nil {
		return nil, ErrNoActiveQuestion
	}
	if _, ok := l.tally.Increment(label); !ok {
		return nil, ErrInvalidOption
	}
	l.votesBy[connectionID]++
	return l.tally.Snapshot(), nil
}

// CurrentSnapshot returns the active question's tally, if any.
func (l *Lifecycle) CurrentSnapshot() (Snapshot, bool) {
	if l.tally == nil {
		return nil, false
	}
	return l.tally.Snapshot(), true
}

// Current returns the active question, if any.
func (l *Lifecycle) Current() (Question, bool) {
	if l.question == nil {
		return Question{}, false
	}
	return *l.question, true
}

// VotesBy returns how many votes connectionID cast on the active question.
func (l *Lifecycle) VotesBy(connectionID string) int {
	return l.votesBy[connectionID]
}

// Close stops the active timer without emitting time-up. The question stays
// readable; nothing will expire it afterwards.
func (l *Lifecycle) Close() {
	l.stopTimer()
}

func (l *Lifecycle) stopTimer() {
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer = nil
}

func (l *Lifecycle) expire(round uint64, emitTimeUp func(Question)) {
	if l.question == nil || l.round != round {
		return
	}
	expired := *l.question
	l.question = nil
	l.tally = nil
	l.timer = nil
	l.votesBy = nil
	if emitTimeUp != nil {
		emitTimeUp(expired)
	}
}
