package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	prompted     []string
	inputPos     int
	passPos      int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newSignupSession(t *testing.T, fn submit.Func, opts ...session.Option) *session.Session {
	t.Helper()
	form, err := catalog.SignUp(catalog.Options{
		Locations:    []string{"Denver, CO", "Boston, MA"},
		ServiceTypes: []string{"Cleaning", "Plumbing"},
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	sess, err := session.New(form, fn, opts...)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return sess
}

func TestRunAsksConditionalFieldAndReasksInvalid(t *testing.T) {
	t.Parallel()

	var sent submit.Registration
	sess := newSignupSession(t, func(ctx context.Context, payload map[string]string) (auth.Snapshot, error) {
		sent = submit.RegistrationFromValues(payload)
		return auth.Authenticated(auth.RolePro), nil
	})
	driver := &stubDriver{
		inputs:    []string{" Ada", "Ada", "ada@example.com"},
		passwords: []string{"analytical"},
		selectIdx: []int{0, 1, 1},
	}

	outcome, err := New(WithDriver(driver)).Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Decision != navigation.RedirectTo(navigation.MyProfile) {
		t.Fatalf("unexpected decision %s", outcome.Decision)
	}
	want := submit.Registration{
		FullName:    "Ada",
		Email:       "ada@example.com",
		Password:    "analytical",
		Location:    "Denver, CO",
		Role:        "pro",
		ServiceType: "Plumbing",
	}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	wantPrompts := []string{"Full name", "Full name", "Email address", "Password", "Location", "I am a", "Service type"}
	if diff := cmp.Diff(wantPrompts, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(driver.infoMessages[0], "Cannot start or end with whitespace") {
		t.Fatalf("expected trimmed error first, got %v", driver.infoMessages)
	}
}

func TestRunSkipsInactiveServiceType(t *testing.T) {
	t.Parallel()

	sess := newSignupSession(t, func(context.Context, map[string]string) (auth.Snapshot, error) {
		return auth.Authenticated(auth.RoleUser), nil
	})
	driver := &stubDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		passwords: []string{"analytical"},
		selectIdx: []int{1, 0},
	}
	outcome, err := New(WithDriver(driver)).Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Decision != navigation.RedirectTo(navigation.ProfilesList) {
		t.Fatalf("unexpected decision %s", outcome.Decision)
	}
	if driver.selectPos != 2 {
		t.Fatalf("service type must not be asked for users, selects=%d", driver.selectPos)
	}
}

func TestRunRetriesAfterServerRejection(t *testing.T) {
	t.Parallel()

	calls := 0
	sess := newSignupSession(t, func(_ context.Context, payload map[string]string) (auth.Snapshot, error) {
		calls++
		if payload["email"] == "taken@example.com" {
			return auth.Anonymous, submit.FieldError("email", "Username already taken")
		}
		return auth.Authenticated(auth.RoleUser), nil
	})
	driver := &stubDriver{
		inputs:    []string{"Ada", "taken@example.com", "fresh@example.com"},
		passwords: []string{"analytical"},
		selectIdx: []int{0, 0},
		confirm:   []bool{true},
	}
	outcome, err := New(WithDriver(driver)).Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Succeeded() || calls != 2 {
		t.Fatalf("expected success on second call, calls=%d", calls)
	}
	if driver.prompted[len(driver.prompted)-1] != "Email address" {
		t.Fatalf("only the rejected field should be asked again: %v", driver.prompted)
	}
}

func TestRunGivesUp(t *testing.T) {
	t.Parallel()

	sess := newSignupSession(t, func(context.Context, map[string]string) (auth.Snapshot, error) {
		return auth.Anonymous, errors.New("connection refused")
	})
	driver := &stubDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		passwords: []string{"analytical"},
		selectIdx: []int{0, 0},
		confirm:   []bool{false},
	}
	_, err := New(WithDriver(driver)).Run(context.Background(), sess)
	if !errors.Is(err, ErrGaveUp) {
		t.Fatalf("expected ErrGaveUp, got %v", err)
	}
	if sess.SubmitError() != "connection refused" {
		t.Fatalf("unexpected submit error %q", sess.SubmitError())
	}
}

func TestRunTooManyAttempts(t *testing.T) {
	t.Parallel()

	sess := newSignupSession(t, func(context.Context, map[string]string) (auth.Snapshot, error) {
		return auth.Anonymous, nil
	})
	driver := &stubDriver{inputs: []string{"", " ", "  "}}
	_, err := New(WithDriver(driver), WithMaxRetries(3)).Run(context.Background(), sess)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRunSkipsFormWhenAuthenticated(t *testing.T) {
	t.Parallel()

	sess := newSignupSession(t, func(context.Context, map[string]string) (auth.Snapshot, error) {
		t.Fatalf("submitter must not run")
		return auth.Anonymous, nil
	}, session.WithAuth(auth.Authenticated(auth.RoleUser)))
	driver := &stubDriver{}

	outcome, err := New(WithDriver(driver)).Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Decision != navigation.RedirectTo(navigation.ProfilesList) || len(driver.prompted) != 0 {
		t.Fatalf("expected immediate redirect without prompts")
	}
}
