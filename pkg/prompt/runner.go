// Package prompt walks a form session in the terminal: it asks for every
// active field, re-asks on validation errors and reports how submission went.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/session"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when a field keeps failing validation.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
	// ErrGaveUp is returned when the user declines to retry a failed submit.
	ErrGaveUp = errors.New("prompt: submission abandoned")
)

const defaultMaxRetries = 3

// Runner drives a session through a Driver.
type Runner struct {
	driver     Driver
	maxRetries int
}

// Option configures a Runner.
type Option func(*Runner)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithMaxRetries bounds how often one field is re-asked in a row.
func WithMaxRetries(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// New returns a runner using the survey driver unless overridden.
func New(opts ...Option) *Runner {
	r := &Runner{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Run fills the form, submits it and repeats until the submission succeeds,
// the user gives up or the session is redirected away from the form.
func (r *Runner) Run(ctx context.Context, sess *session.Session) (session.Outcome, error) {
	if !sess.Decision().ShouldRender() {
		return session.Outcome{Decision: sess.Decision(), Snapshot: sess.Auth()}, nil
	}

	fields := sess.Form().Names()
	for {
		if err := r.Fill(ctx, sess, fields); err != nil {
			return session.Outcome{}, err
		}

		attempt := sess.Submit(ctx)
		switch attempt.Status {
		case session.AttemptInvalid:
			r.reportErrors(ctx, sess.Form(), attempt.Errors)
			fields = sortedByForm(sess.Form(), attempt.Errors)
			continue
		case session.AttemptIgnored:
			return sess.Wait(ctx)
		}

		if err := r.driver.Info(ctx, "Submitting..."); err != nil {
			return session.Outcome{}, err
		}
		outcome, err := attempt.Wait(ctx)
		if err != nil {
			return session.Outcome{}, err
		}
		if outcome.Succeeded() {
			return outcome, nil
		}

		if err := r.driver.Info(ctx, "✗ "+outcome.SubmitError); err != nil {
			return outcome, err
		}
		r.reportErrors(ctx, sess.Form(), outcome.FieldErrors)
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit and try again?", Default: true})
		if err != nil {
			return outcome, err
		}
		if !retry {
			return outcome, ErrGaveUp
		}
		if len(outcome.FieldErrors) > 0 {
			fields = sortedByForm(sess.Form(), outcome.FieldErrors)
		} else {
			fields = sess.Form().Names()
		}
	}
}

// Fill asks for the named fields in form order, skipping fields that are
// inactive at the moment they come up. Activation is re-evaluated after each
// answer, so a conditional field shows up as soon as its trigger is set. When
// an answer activates a field outside names, that field is asked too.
func (r *Runner) Fill(ctx context.Context, sess *session.Session, names []string) error {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	for _, field := range sess.Form().Fields() {
		if _, ok := wanted[field.Name]; !ok {
			continue
		}
		if !field.Active(sess.Values()) {
			continue
		}
		activated, err := r.askField(ctx, sess, field)
		if err != nil {
			return err
		}
		for _, name := range activated {
			wanted[name] = struct{}{}
		}
	}
	return nil
}

func (r *Runner) askField(ctx context.Context, sess *session.Session, field model.Field) ([]string, error) {
	for try := 0; try < r.maxRetries; try++ {
		value, err := r.ask(ctx, field, sess.Value(field.Name))
		if err != nil {
			return nil, err
		}
		update, err := sess.SetValue(field.Name, value)
		if err != nil {
			return nil, err
		}
		if update.Error == "" {
			return update.Activation.Activated, nil
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("✗ %s: %s", field.DisplayLabel(), update.Error)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
}

func (r *Runner) ask(ctx context.Context, field model.Field, current string) (string, error) {
	switch {
	case field.Kind.Choice() && len(field.Options) > 0:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.DisplayLabel(),
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, current),
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case field.Kind.Secret():
		return r.driver.Password(ctx, InputConfig{Message: field.DisplayLabel()})
	default:
		return r.driver.Input(ctx, InputConfig{Message: field.DisplayLabel(), Default: current})
	}
}

func (r *Runner) reportErrors(ctx context.Context, form model.Form, errs map[string]string) {
	for _, name := range sortedByForm(form, errs) {
		label := name
		if field, ok := form.Field(name); ok {
			label = field.DisplayLabel()
		}
		_ = r.driver.Info(ctx, fmt.Sprintf("✗ %s: %s", label, errs[name]))
	}
}

// sortedByForm orders error keys by field declaration order.
func sortedByForm(form model.Form, errs map[string]string) []string {
	order := make(map[string]int, form.Len())
	for i, name := range form.Names() {
		order[name] = i
	}
	out := make([]string, 0, len(errs))
	for name := range errs {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := order[out[i]]
		oj, jok := order[out[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return strings.Compare(out[i], out[j]) < 0
	})
	return out
}
