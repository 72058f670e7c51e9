// Package session drives one form instance from first keystroke to the
// post-submit navigation decision.
//
// A Session owns a field registry, validates the active fields on submit,
// hands the active payload to an external Submitter on its own goroutine and
// records the outcome. Submit never blocks on the submitter; callers wait on
// the returned Attempt or on Session.Wait.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/activation"
	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/registry"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ErrNoSubmitter is returned by New when no submitter is supplied.
var ErrNoSubmitter = errors.New("session: submitter is required")

// Submitter performs the external action (registration, login) with the
// active field values and reports the authentication state that resulted.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]string) (auth.Snapshot, error)
}

// Session is safe for concurrent use.
type Session struct {
	id        string
	form      model.Form
	reg       *registry.Registry
	submitter Submitter
	hooks     []Hook
	now       func() time.Time

	mu         sync.Mutex
	state      State
	submitting bool
	submitted  bool
	submitErr  string
	lastErr    error
	auth       auth.Snapshot
	decision   navigation.Decision
	seq        int
	inflight   *Attempt
	last       *Attempt
}

// Option configures a Session.
type Option func(*config)

type config struct {
	id      string
	hooks   []Hook
	initial map[string]string
	auth    *auth.Snapshot
	now     func() time.Time
}

// WithID overrides the generated session identifier.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithHooks registers observers.
func WithHooks(hooks ...Hook) Option {
	return func(c *config) {
		for _, hook := range hooks {
			if hook != nil {
				c.hooks = append(c.hooks, hook)
			}
		}
	}
}

// WithInitialValues seeds field values; Reset restores them.
func WithInitialValues(values map[string]string) Option {
	return func(c *config) {
		c.initial = values
	}
}

// WithAuth bootstraps the session with the current authentication snapshot.
func WithAuth(snapshot auth.Snapshot) Option {
	return func(c *config) {
		c.auth = &snapshot
	}
}

// WithClock replaces time.Now for event timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New starts a session for form. The session begins idle, pristine and
// anonymous unless WithAuth says otherwise.
func New(form model.Form, submitter Submitter, opts ...Option) (*Session, error) {
	if submitter == nil {
		return nil, ErrNoSubmitter
	}
	cfg := config{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	s := &Session{
		id:        cfg.id,
		form:      form,
		reg:       registry.New(form, registry.WithInitialValues(cfg.initial)),
		submitter: submitter,
		hooks:     cfg.hooks,
		now:       cfg.now,
		state:     StateIdle,
		decision:  navigation.StayOnForm,
	}
	if cfg.auth != nil {
		s.Bootstrap(*cfg.auth)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Form returns the session's form descriptors.
func (s *Session) Form() model.Form {
	return s.form
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetValue records user input for name.
func (s *Session) SetValue(name, value string) (registry.Update, error) {
	update, err := s.reg.SetValue(name, value)
	if err != nil {
		return update, err
	}
	s.emit([]Event{{
		Kind:       EventField,
		Field:      name,
		FieldError: update.Error,
		Activation: update.Activation,
	}})
	return update, nil
}

// Touch marks name as visited.
func (s *Session) Touch(name string) error {
	return s.reg.Touch(name)
}

// Value returns the current value of name.
func (s *Session) Value(name string) string {
	return s.reg.Value(name)
}

// Values copies every field value, active or not.
func (s *Session) Values() map[string]string {
	return s.reg.Values()
}

// Field returns the state of name.
func (s *Session) Field(name string) (registry.FieldState, bool) {
	return s.reg.State(name)
}

// ActiveFields returns the fields active for the current values, in
// declaration order.
func (s *Session) ActiveFields() []model.Field {
	return activation.Ordered(s.form.Fields(), s.reg.Values())
}

// Submit validates the active fields and, when they pass, starts the
// submitter on a new goroutine with a copy of the active values. Field edits
// made while the attempt is in flight do not reach its payload.
//
// Submit is ignored while a submission is in flight and after a successful
// one.
func (s *Session) Submit(ctx context.Context) *Attempt {
	s.mu.Lock()
	var events []Event

	if s.state == StateSubmitting || s.state == StateSuccess {
		attempt := s.ignoredLocked(&events)
		s.mu.Unlock()
		s.emit(events)
		return attempt
	}
	if s.state == StateFailed {
		s.transitionLocked(StateIdle, &events, Event{Attempt: s.seq})
	}

	s.seq++
	seq := s.seq
	if err := s.transitionLocked(StateValidating, &events, Event{Attempt: seq}); err != nil {
		attempt := s.ignoredLocked(&events)
		s.mu.Unlock()
		s.emit(events)
		return attempt
	}

	values := s.reg.Values()
	fields := s.form.Fields()
	result := validation.ValidateActive(s.form, values)
	s.reg.ApplyErrors(activation.ActiveFields(fields, values).Sorted(), result.Errors())

	if !result.Valid() {
		errs := result.Errors()
		s.transitionLocked(StateInvalid, &events, Event{Attempt: seq, Errors: errs})
		s.transitionLocked(StateIdle, &events, Event{Attempt: seq})
		attempt := newSettledAttempt(seq, AttemptInvalid)
		attempt.Errors = errs
		s.last = attempt
		s.mu.Unlock()
		s.emit(events)
		return attempt
	}

	s.transitionLocked(StateSubmitting, &events, Event{Attempt: seq})
	s.submitting = true
	s.submitErr = ""
	s.lastErr = nil

	attempt := &Attempt{
		Seq:     seq,
		Status:  AttemptStarted,
		Payload: activation.Payload(fields, values),
		done:    make(chan struct{}),
	}
	s.inflight = attempt
	s.last = attempt
	s.mu.Unlock()
	s.emit(events)

	payload := clonePayload(attempt.Payload)
	go s.run(ctx, attempt, payload)
	return attempt
}

// SubmitWith writes values and submits, the way a one-click demo sign-in
// fills the form for the user. Nothing is written while a submission is in
// flight or after success.
func (s *Session) SubmitWith(ctx context.Context, values map[string]string) (*Attempt, error) {
	s.mu.Lock()
	blocked := s.state == StateSubmitting || s.state == StateSuccess
	s.mu.Unlock()
	if blocked {
		return s.Submit(ctx), nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		if !s.form.Has(name) {
			return nil, fmt.Errorf("%w %q", registry.ErrUnknownField, name)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := s.SetValue(name, values[name]); err != nil {
			return nil, err
		}
	}
	return s.Submit(ctx), nil
}

func (s *Session) run(ctx context.Context, attempt *Attempt, payload map[string]string) {
	start := s.now()
	snapshot, err := s.callSubmitter(ctx, payload)
	s.resolve(attempt, snapshot, err, s.now().Sub(start))
}

func (s *Session) callSubmitter(ctx context.Context, payload map[string]string) (snapshot auth.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: submitter panicked: %v", r)
		}
	}()
	return s.submitter.Submit(ctx, payload)
}

func (s *Session) resolve(attempt *Attempt, snapshot auth.Snapshot, err error, elapsed time.Duration) {
	s.mu.Lock()
	var events []Event

	s.submitting = false
	outcome := Outcome{Seq: attempt.Seq, Err: err, Duration: elapsed}

	if err == nil {
		s.transitionLocked(StateSuccess, &events, Event{Attempt: attempt.Seq, Duration: elapsed})
		s.submitted = true
		s.setAuthLocked(snapshot, &events)
		outcome.Snapshot = snapshot
	} else {
		s.transitionLocked(StateFailed, &events, Event{Attempt: attempt.Seq, Err: err, Duration: elapsed})
		s.submitted = false
		s.lastErr = err
		s.submitErr = submit.Describe(err)
		if se, ok := submit.AsError(err); ok {
			fieldErrs := submit.MapError(s.form.Names(), se).First()
			scope := make([]string, 0, len(fieldErrs))
			for name := range fieldErrs {
				scope = append(scope, name)
			}
			s.reg.ApplyErrors(scope, fieldErrs)
			outcome.FieldErrors = fieldErrs
		}
		outcome.Snapshot = s.auth
	}
	outcome.Decision = s.decision
	outcome.SubmitError = s.submitErr

	if s.inflight == attempt {
		s.inflight = nil
	}
	s.mu.Unlock()
	s.emit(events)
	attempt.settle(outcome)
}

// Wait blocks until the in-flight attempt resolves and returns its outcome.
// With nothing in flight it returns the outcome of the latest attempt.
func (s *Session) Wait(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	attempt := s.inflight
	if attempt == nil {
		attempt = s.last
	}
	s.mu.Unlock()
	if attempt == nil {
		return Outcome{}, nil
	}
	return attempt.Wait(ctx)
}

// Reset restores every field, clears SubmitError and, after a failed
// attempt, returns the session to idle. It never changes Submitting: an
// in-flight attempt still resolves normally.
func (s *Session) Reset() {
	s.mu.Lock()
	var events []Event
	s.reg.Reset()
	s.submitErr = ""
	s.lastErr = nil
	if s.state == StateFailed {
		s.transitionLocked(StateIdle, &events, Event{Attempt: s.seq})
	}
	events = append(events, Event{Kind: EventReset, Attempt: s.seq})
	s.mu.Unlock()
	s.emit(events)
}

// Pristine reports whether no field has been edited since start or Reset.
func (s *Session) Pristine() bool {
	return s.reg.Pristine()
}

// Submitting reports whether an attempt is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submitted reports whether the latest attempt succeeded.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// SubmitError returns the sanitized message of the latest failure.
func (s *Session) SubmitError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitErr
}

// Err returns the raw error of the latest failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CanSubmit drives the submit control: false while pristine, while a
// submission is in flight and once one has succeeded.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	blocked := s.submitting || s.state == StateSuccess
	s.mu.Unlock()
	return !blocked && !s.reg.Pristine()
}

// CanReset drives the clear control: false while pristine or submitting.
func (s *Session) CanReset() bool {
	s.mu.Lock()
	submitting := s.submitting
	s.mu.Unlock()
	return !submitting && !s.reg.Pristine()
}

// Bootstrap installs the initial authentication snapshot and returns the
// resulting decision. An already authenticated user is redirected before the
// form is shown.
func (s *Session) Bootstrap(snapshot auth.Snapshot) navigation.Decision {
	s.mu.Lock()
	var events []Event
	s.auth = snapshot
	s.decision = navigation.Decide(snapshot)
	events = append(events, Event{Kind: EventDecision, Decision: s.decision})
	decision := s.decision
	s.mu.Unlock()
	s.emit(events)
	return decision
}

// ObserveAuth feeds a new authentication snapshot and reports whether the
// navigation decision changed.
func (s *Session) ObserveAuth(snapshot auth.Snapshot) (navigation.Decision, bool) {
	s.mu.Lock()
	var events []Event
	changed := s.setAuthLocked(snapshot, &events)
	decision := s.decision
	s.mu.Unlock()
	s.emit(events)
	return decision, changed
}

// Decision returns the latest navigation decision.
func (s *Session) Decision() navigation.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision
}

// Auth returns the latest authentication snapshot.
func (s *Session) Auth() auth.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// Snapshot captures the whole session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.id,
		FormID:      s.form.ID(),
		State:       s.state,
		Fields:      s.reg.Snapshot(),
		Active:      activation.ActiveFields(s.form.Fields(), s.reg.Values()).Sorted(),
		Submitting:  s.submitting,
		Submitted:   s.submitted,
		SubmitError: s.submitErr,
		Attempts:    s.seq,
		Auth:        s.auth,
		Decision:    s.decision,
	}
}

func (s *Session) setAuthLocked(snapshot auth.Snapshot, events *[]Event) bool {
	s.auth = snapshot
	next := navigation.Decide(snapshot)
	if next == s.decision {
		return false
	}
	s.decision = next
	*events = append(*events, Event{Kind: EventDecision, Decision: next})
	return true
}

func (s *Session) transitionLocked(to State, events *[]Event, ev Event) error {
	if err := checkTransition(s.state, to); err != nil {
		return err
	}
	ev.Kind = EventTransition
	ev.From = s.state
	ev.To = to
	s.state = to
	*events = append(*events, ev)
	return nil
}

func (s *Session) ignoredLocked(events *[]Event) *Attempt {
	*events = append(*events, Event{Kind: EventIgnored, Attempt: s.seq, From: s.state})
	return newSettledAttempt(s.seq, AttemptIgnored)
}

func (s *Session) emit(events []Event) {
	if len(s.hooks) == 0 {
		return
	}
	at := s.now()
	for _, ev := range events {
		ev.SessionID = s.id
		ev.FormID = s.form.ID()
		ev.At = at
		for _, hook := range s.hooks {
			hook.OnEvent(ev)
		}
	}
}

func clonePayload(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
