package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	apperrors "github.com/louisbranch/livepoll/internal/platform/errors"
	"github.com/louisbranch/livepoll/internal/services/poll/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "github.com/louisbranch/livepoll/internal/services/poll/app"
	defaultInboxSize = 256
)

// ErrCoordinatorStopped is returned when an event arrives after Run returned.
var ErrCoordinatorStopped = errors.New("coordinator stopped")

// Gateway delivers outbound messages to connections.
type Gateway interface {
	// Send delivers msg to one connection. Unknown connections are ignored.
	Send(connectionID string, msg Outbound)
	// Broadcast delivers msg to every open connection.
	Broadcast(msg Outbound)
}

// AfterFunc arms a timer that calls fn once after d.
type AfterFunc func(d time.Duration, fn func()) domain.Timer

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithAfterFunc replaces the wall-clock timer used for question expiry.
func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(c *Coordinator) {
		if afterFunc != nil {
			c.afterFunc = afterFunc
		}
	}
}

// WithTracer sets the tracer used for per-event spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithInboxSize sets how many events may wait for the loop.
func WithInboxSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.inboxSize = size
		}
	}
}

type event struct {
	connectionID string
	requestID    string
	msg          Inbound
}

// Coordinator owns the session state and applies every event in one
// goroutine. Transport goroutines and expiry timers only enqueue.
type Coordinator struct {
	gateway   Gateway
	registry  *domain.Registry
	lifecycle *domain.Lifecycle
	afterFunc AfterFunc
	tracer    trace.Tracer

	inboxSize int
	inbox     chan event
	done      chan struct{}
	running   atomic.Bool
}

// NewCoordinator returns a coordinator emitting through gateway. Call Run to
// start processing.
func NewCoordinator(gateway Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:   gateway,
		registry:  domain.NewRegistry(),
		afterFunc: wallClockAfterFunc,
		tracer:    otel.Tracer(tracerName),
		inboxSize: defaultInboxSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.inbox = make(chan event, c.inboxSize)
	c.lifecycle = domain.NewLifecycle(c.registry, loopScheduler{coordinator: c})
	return c
}

func wallClockAfterFunc(d time.Duration, fn func()) domain.Timer {
	return time.AfterFunc(d, fn)
}

// loopScheduler arms timers whose callbacks run on the event loop.
type loopScheduler struct {
	coordinator *Coordinator
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) domain.Timer {
	c := s.coordinator
	return c.afterFunc(d, func() {
		if err := c.enqueue(context.Background(), event{msg: timerExpired{fire: fn}}); err != nil {
			log.Printf("poll: drop question expiry: %v", err)
		}
	})
}

// Run processes events until ctx ends. It stops any pending expiry timer on
// return and may be called only once.
func (c *Coordinator) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("coordinator already running")
	}
	defer close(c.done)
	defer c.lifecycle.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.inbox:
			c.handle(ctx, ev)
		}
	}
}

// Dispatch enqueues an inbound request from connectionID.
func (c *Coordinator) Dispatch(ctx context.Context, connectionID string, requestID string, msg Inbound) error {
	if msg == nil {
		return errors.New("message is required")
	}
	return c.enqueue(ctx, event{connectionID: connectionID, requestID: requestID, msg: msg})
}

// Disconnect enqueues the departure of connectionID.
func (c *Coordinator) Disconnect(ctx context.Context, connectionID string) error {
	return c.enqueue(ctx, event{connectionID: connectionID, msg: Disconnect{}})
}

func (c *Coordinator) enqueue(ctx context.Context, ev event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-c.done:
		return ErrCoordinatorStopped
	default:
	}
	select {
	case c.inbox <- ev:
		return nil
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) handle(ctx context.Context, ev event) {
	_, span := c.tracer.Start(ctx, "poll."+ev.msg.Type(), trace.WithAttributes(
		attribute.String("poll.connection_id", ev.connectionID),
	))
	defer span.End()

	err := c.apply(ev)
	if err == nil {
		span.SetAttributes(attribute.String("poll.outcome", "OK"))
		return
	}

	code := apperrors.CodeOf(err)
	span.SetAttributes(attribute.String("poll.outcome", string(code)))
	span.SetStatus(codes.Error, err.Error())
	log.Printf("poll: reject %s conn=%s code=%s: %v", ev.msg.Type(), ev.connectionID, code, err)
	c.gateway.Send(ev.connectionID, ErrorMessage{
		RequestID: ev.requestID,
		Code:      code,
		Metadata:  apperrors.MetadataOf(err),
	})
}

func (c *Coordinator) apply(ev event) error {
	switch msg := ev.msg.(type) {
	case Register:
		return c.register(ev, msg)
	case AskQuestion:
		return c.askQuestion(ev, msg)
	case SubmitAnswer:
		return c.submitAnswer(ev, msg)
	case GetLiveVotes:
		c.getLiveVotes(ev)
		return nil
	case Disconnect:
		c.disconnect(ev)
		return nil
	case timerExpired:
		msg.fire()
		return nil
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unsupported message %T", msg))
	}
}

func (c *Coordinator) register(ev event, msg Register) error {
	role, err := domain.ParseRole(msg.Role)
	if err != nil {
		return err
	}
	result, err := c.registry.Register(ev.connectionID, role, msg.Name)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case domain.OutcomeNeedsName:
		log.Printf("poll: student conn=%s needs a name", ev.connectionID)
		c.gateway.Send(ev.connectionID, Registered{RequestID: ev.requestID, Role: NeedsStudentName})
	default:
		log.Printf("poll: registered conn=%s role=%s participants=%d", ev.connectionID, result.Role, c.registry.Len())
		c.gateway.Send(ev.connectionID, Registered{RequestID: ev.requestID, Role: string(result.Role)})
	}
	return nil
}

func (c *Coordinator) askQuestion(ev event, msg AskQuestion) error {
	spec := domain.QuestionSpec{
		Text:             msg.Text,
		Options:          msg.Options,
		TimeLimitSeconds: msg.TimeLimitSeconds,
	}
	question, err := c.lifecycle.AskQuestion(ev.connectionID, spec, c.timeUp)
	if err != nil {
		return err
	}

	log.Printf("poll: question %d asked text=%q options=%d time_limit=%ds", question.Round, question.Text, len(question.Options), question.TimeLimitSeconds)
	c.gateway.Broadcast(NewQuestion{
		Text:             question.Text,
		Options:          question.Options,
		TimeLimitSeconds: question.TimeLimitSeconds,
	})
	return nil
}

func (c *Coordinator) timeUp(question domain.Question) {
	log.Printf("poll: question %d expired", question.Round)
	c.gateway.Broadcast(TimeUp{})
}

func (c *Coordinator) submitAnswer(ev event, msg SubmitAnswer) error {
	snapshot, err := c.lifecycle.SubmitAnswer(ev.connectionID, msg.Answer)
	if err != nil {
		return err
	}
	if votes := c.lifecycle.VotesBy(ev.connectionID); votes > 1 {
		log.Printf("poll: conn=%s voted %d times on the active question", ev.connectionID, votes)
	}
	c.gateway.Broadcast(UpdateVotes{Votes: snapshot})
	return nil
}

func (c *Coordinator) getLiveVotes(ev event) {
	snapshot, ok := c.lifecycle.CurrentSnapshot()
	if !ok {
		return
	}
	c.gateway.Send(ev.connectionID, UpdateVotes{RequestID: ev.requestID, Votes: snapshot})
}

func (c *Coordinator) disconnect(ev event) {
	result := c.registry.Unregister(ev.connectionID)
	if !result.TeacherLeft {
		return
	}
	log.Printf("poll: teacher conn=%s disconnected", ev.connectionID)
	c.gateway.Broadcast(TeacherDisconnected{})
}
