package submit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/auth"
)

func TestRegistrationFuncDefaultsServiceType(t *testing.T) {
	t.Parallel()

	var got Registration
	fn := RegistrationFunc(func(_ context.Context, reg Registration) (auth.Snapshot, error) {
		got = reg
		return auth.Authenticated(auth.Role(reg.Role)), nil
	})

	snap, err := fn.Submit(context.Background(), map[string]string{
		"full_name": "Ada Lovelace",
		"email":     "ada@example.com",
		"password":  "analytical",
		"location":  "London",
		"role":      "user",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap != auth.Authenticated(auth.RoleUser) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	want := Registration{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "analytical",
		Location: "London",
		Role:     "user",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("registration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoginFromValues(t *testing.T) {
	t.Parallel()

	got := LoginFromValues(map[string]string{"emailAddress": "a@b.co", "password": "secret"})
	if got != (Login{Email: "a@b.co", Password: "secret"}) {
		t.Fatalf("unexpected login %+v", got)
	}
	got = LoginFromValues(map[string]string{"email": "c@d.co", "password": "x"})
	if got.Email != "c@d.co" {
		t.Fatalf("expected email fallback, got %+v", got)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("register: %w", &Error{Status: 422, Reason: "ValidationError", Message: "<b>Username</b> already taken"})
	if got := Describe(wrapped); got != "Username already taken" {
		t.Fatalf("Describe = %q", got)
	}
	if got := Describe(&Error{Reason: "Unauthorized"}); got != "Unauthorized" {
		t.Fatalf("Describe reason fallback = %q", got)
	}
	if got := Describe(errors.New("dial tcp: connection refused")); got != "dial tcp: connection refused" {
		t.Fatalf("Describe plain = %q", got)
	}
	if got := Describe(nil); got != "" {
		t.Fatalf("Describe(nil) = %q", got)
	}
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	t.Parallel()

	if got := Sanitize(`  Can't <script>alert(1)</script>sign in  `); got != "Can't sign in" {
		t.Fatalf("Sanitize = %q", got)
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	err := &Error{Status: 401, Message: "Incorrect email or password"}
	if got := err.Error(); got != "submit: Incorrect email or password (status 401)" {
		t.Fatalf("Error() = %q", got)
	}
	if _, ok := AsError(fmt.Errorf("wrap: %w", FieldError("email", "taken"))); !ok {
		t.Fatalf("AsError should unwrap")
	}
}

func TestMapErrorPayload(t *testing.T) {
	t.Parallel()

	fields := []string{"full_name", "email", "password"}
	got := MapErrorPayload(fields, map[string][]string{
		"/body/email":      {"Username already taken", "Username already taken"},
		"fullName":         {"Must be trimmed"},
		"password[0]":      {"  "},
		"non_field_errors": {"Try again"},
		"nickname":         {"Unknown field"},
	})
	want := ErrorMapping{
		Fields: map[string][]string{
			"email":     {"Username already taken"},
			"full_name": {"Must be trimmed"},
		},
		Form: []string{"Unknown field", "Try again"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"email": "Username already taken", "full_name": "Must be trimmed"}, got.First()); diff != "" {
		t.Fatalf("first mismatch (-want +got):\n%s", diff)
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	got := MapError([]string{"email"}, &Error{Message: "Service unavailable"})
	if diff := cmp.Diff(ErrorMapping{Form: []string{"Service unavailable"}}, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	got = MapError([]string{"email"}, FieldError("email", "Username already taken"))
	if diff := cmp.Diff(map[string][]string{"email": {"Username already taken"}}, got.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
