package session

import (
	"context"
	"time"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// AttemptStatus says what Submit did.
type AttemptStatus string

const (
	// AttemptInvalid means validation failed; the submitter was not called.
	AttemptInvalid AttemptStatus = "invalid"
	// AttemptStarted means the submitter is running.
	AttemptStarted AttemptStatus = "started"
	// AttemptIgnored means a submission was already in flight or had
	// succeeded.
	AttemptIgnored AttemptStatus = "ignored"
)

// Attempt is the handle returned by Submit.
type Attempt struct {
	Seq    int
	Status AttemptStatus
	// Errors holds per-field messages when Status is AttemptInvalid.
	Errors map[string]string
	// Payload is the snapshot of active values handed to the submitter.
	Payload map[string]string

	done    chan struct{}
	outcome Outcome
}

// Outcome is how a started attempt resolved.
type Outcome struct {
	Seq         int
	Snapshot    auth.Snapshot
	Err         error
	SubmitError string
	FieldErrors map[string]string
	Decision    navigation.Decision
	Duration    time.Duration
}

// Succeeded reports whether the submitter returned without error.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

func newSettledAttempt(seq int, status AttemptStatus) *Attempt {
	done := make(chan struct{})
	close(done)
	return &Attempt{Seq: seq, Status: status, done: done}
}

// Started reports whether the submitter was invoked.
func (a *Attempt) Started() bool {
	return a.Status == AttemptStarted
}

// Done is closed once the attempt has resolved. Attempts that never started
// are born resolved.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Outcome returns the resolution; ok is false until Done is closed or when
// the attempt never started.
func (a *Attempt) Outcome() (Outcome, bool) {
	select {
	case <-a.done:
		return a.outcome, a.Started()
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the attempt resolves or ctx is done.
func (a *Attempt) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-a.done:
		return a.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (a *Attempt) settle(outcome Outcome) {
	a.outcome = outcome
	close(a.done)
}
