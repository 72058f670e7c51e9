package session

import (
	"errors"
	"fmt"
	"slices"
)

// State is the lifecycle state of a form session.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// ErrInvalidTransition is returned for moves the table does not allow.
var ErrInvalidTransition = errors.New("session: invalid state transition")

// Transitions lists the allowed moves out of each state. Success is terminal.
var Transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateInvalid, StateSubmitting},
	StateInvalid:    {StateIdle},
	StateSubmitting: {StateSuccess, StateFailed},
	StateFailed:     {StateIdle},
	StateSuccess:    {},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	allowed, ok := Transitions[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(Transitions[s]) == 0
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
