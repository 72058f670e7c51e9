package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func TestSignUpCatalog(t *testing.T) {
	t.Parallel()

	form, err := SignUp(Options{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	want := []string{"full_name", "email", "password", "location", "role", "service_type"}
	if diff := cmp.Diff(want, form.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	service, _ := form.Field("service_type")
	if !service.Conditional() {
		t.Fatalf("service_type must be conditional")
	}
	if service.Active(map[string]string{"role": "user"}) {
		t.Fatalf("service_type must be inactive for users")
	}
	if !service.Active(map[string]string{"role": "pro"}) {
		t.Fatalf("service_type must be active for pros")
	}

	role, _ := form.Field("role")
	if role.Kind != model.KindRadioGroup || !role.HasOption("pro") {
		t.Fatalf("unexpected role descriptor %+v", role)
	}

	result := validation.ValidateActive(form, map[string]string{
		"full_name": " Ada",
		"email":     "ada@example",
		"password":  "1234567",
		"role":      "user",
	})
	wantErrs := map[string]string{
		"full_name": "Cannot start or end with whitespace",
		"email":     "Must be a valid email address",
		"password":  "Must be at least 8 characters long",
		"location":  "Required",
	}
	if diff := cmp.Diff(wantErrs, result.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSignUpRuntimeOptions(t *testing.T) {
	t.Parallel()

	form, err := SignUp(Options{Locations: []string{"Austin, TX"}, ServiceTypes: []string{"Roofing"}})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	location, _ := form.Field("location")
	if diff := cmp.Diff([]string{"Austin, TX"}, location.Options); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
	service, _ := form.Field("service_type")
	if diff := cmp.Diff([]string{"Roofing"}, service.Options); diff != "" {
		t.Fatalf("service types mismatch (-want +got):\n%s", diff)
	}

	if _, err := SignUp(Options{Locations: []string{" "}}); !errors.Is(err, model.ErrMissingChoiceValue) {
		t.Fatalf("expected ErrMissingChoiceValue, got %v", err)
	}
}

func TestSignInCatalog(t *testing.T) {
	t.Parallel()

	form, err := SignIn()
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	result := validation.ValidateActive(form, map[string]string{
		"emailAddress": "ada@example.com",
		"password":     "ninechars",
	})
	if msg, _ := result.Message("password"); msg != "Must be at least 10 characters long" {
		t.Fatalf("unexpected password message %q", msg)
	}
	demo := DemoLogin()
	if demo.Email != "user_name@email.com" || demo.Password != "password" {
		t.Fatalf("unexpected demo credentials %+v", demo)
	}
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{"signin", "signup"}, Builtins()); diff != "" {
		t.Fatalf("builtins mismatch (-want +got):\n%s", diff)
	}
	if _, err := NewLoader().Builtin("checkout"); err == nil {
		t.Fatalf("expected error for unknown builtin")
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown kind": `
id: broken
fields:
  - name: color
    kind: color-picker
`,
		"unknown validator": `
id: broken
fields:
  - name: email
    validators:
      - name: isEmail
`,
		"matches without field": `
id: broken
fields:
  - name: confirm
    validators:
      - name: matches
`,
		"no fields": `
id: broken
fields: []
`,
		"unexpected key": `
id: broken
theme: dark
fields:
  - name: email
`,
	}
	for name, doc := range cases {
		if _, err := NewLoader().Parse([]byte(doc)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
	}
}

func TestParseResolvesReferencesAndRules(t *testing.T) {
	t.Parallel()

	doc := `
id: reset
rules: exprlang
fields:
  - name: password
    kind: password
    validators:
      - name: length
        min: 8
        max: 72
  - name: confirm
    kind: password
    validators:
      - name: matches
        field: password
  - name: mode
    kind: radio-group
    options: [email, sms]
  - name: phone
    show_when: mode == "sms" && password != ""
`
	form, err := NewLoader().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	values := map[string]string{"password": "longenough", "confirm": "different", "mode": "sms"}
	result := validation.ValidateActive(form, values)
	if msg, _ := result.Message("confirm"); msg != "Does not match password" {
		t.Fatalf("unexpected confirm message %q", msg)
	}
	phone, _ := form.Field("phone")
	if !phone.Active(values) {
		t.Fatalf("phone should be active for sms")
	}
	if diff := cmp.Diff([]string{"mode", "password"}, phone.Activation.DependsOn()); diff != "" {
		t.Fatalf("deps mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReportsSemanticErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "matches unknown field",
			doc: `
id: bad
fields:
  - name: confirm
    validators:
      - name: matches
        field: secret
`,
			want: ErrUnknownReference,
		},
		{
			name: "broken rule",
			doc: `
id: bad
fields:
  - name: role
  - name: service_type
    show_when: role ==
`,
			want: ErrInvalidRule,
		},
		{
			name: "rule on unknown field",
			doc: `
id: bad
fields:
  - name: service_type
    show_when: plan == "gold"
`,
			want: model.ErrUnknownDependency,
		},
		{
			name: "duplicate field",
			doc: `
id: bad
fields:
  - name: email
  - name: email
`,
			want: model.ErrDuplicateField,
		},
	}
	for _, tc := range cases {
		if _, err := NewLoader().Parse([]byte(tc.doc)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
