package session

import (
	"time"

	"github.com/goliatone/go-formflow/pkg/activation"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// EventKind classifies session events.
type EventKind string

const (
	EventTransition EventKind = "transition"
	EventIgnored    EventKind = "submit_ignored"
	EventDecision   EventKind = "decision"
	EventReset      EventKind = "reset"
	EventField      EventKind = "field"
)

// Event is delivered to hooks after the session lock is released, so hooks
// may call back into the session.
type Event struct {
	Kind      EventKind
	SessionID string
	FormID    string
	At        time.Time

	// Transition events.
	From State
	To   State

	// Attempt is the submission sequence number the event belongs to.
	Attempt int
	// Errors holds validation messages for transitions into StateInvalid.
	Errors map[string]string
	// Err is the submitter's error for transitions into StateFailed.
	Err error
	// Duration is the submitter's run time on resolution.
	Duration time.Duration

	Decision navigation.Decision

	// Field events.
	Field      string
	FieldError string
	Activation activation.Change
}

// Hook observes session events.
type Hook interface {
	OnEvent(Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(Event)

// OnEvent calls fn.
func (fn HookFunc) OnEvent(ev Event) {
	fn(ev)
}
