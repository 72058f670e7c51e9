package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validators"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func passwordField() model.Field {
	return model.Field{
		Name: "password",
		Kind: model.KindPassword,
		Validators: []validators.Validator{
			validators.Required(),
			validators.IsTrimmed(),
			validators.Length(8, 72),
		},
	}
}

func TestValidateFieldReportsFirstFailure(t *testing.T) {
	t.Parallel()

	field := passwordField()

	msg, failed := ValidateField(field, "", nil)
	if !failed || msg != "Required" {
		t.Fatalf("expected required message, got %q (failed=%v)", msg, failed)
	}

	// Both isTrimmed and length fail; isTrimmed is declared first.
	msg, failed = ValidateField(field, " short", nil)
	if !failed || msg != "Cannot start or end with whitespace" {
		t.Fatalf("expected isTrimmed message, got %q", msg)
	}

	msg, failed = ValidateField(field, "short", nil)
	if !failed || !strings.Contains(msg, "at least 8") {
		t.Fatalf("expected length message, got %q", msg)
	}

	if msg, failed = ValidateField(field, "long-enough", nil); failed {
		t.Fatalf("expected pass, got %q", msg)
	}
}

func TestValidateFieldSkipsInactive(t *testing.T) {
	t.Parallel()

	field := model.Field{
		Name:       "service_type",
		Kind:       model.KindSelect,
		Validators: []validators.Validator{validators.Required()},
		Activation: visibility.Equals("role", "pro"),
	}
	if msg, failed := ValidateField(field, "", map[string]string{"role": "user"}); failed {
		t.Fatalf("inactive field must not fail, got %q", msg)
	}
	if _, failed := ValidateField(field, "", map[string]string{"role": "pro"}); !failed {
		t.Fatalf("active field must fail required")
	}
}

func TestValidateActiveAggregates(t *testing.T) {
	t.Parallel()

	form := model.MustForm("signin",
		model.Field{Name: "emailAddress", Kind: model.KindEmail, Validators: []validators.Validator{validators.Required(), validators.ValidEmail()}},
		passwordField(),
		model.Field{Name: "confirm", Kind: model.KindPassword, Validators: []validators.Validator{validators.Matches("password")}},
	)

	values := map[string]string{"emailAddress": "foo@bar", "password": "longpassword", "confirm": "other"}
	result := ValidateActive(form, values)
	want := []Issue{
		{Field: "emailAddress", Message: "Must be a valid email address"},
		{Field: "confirm", Message: "Does not match password"},
	}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if result.Valid() {
		t.Fatalf("expected invalid result")
	}
	if msg, ok := result.Message("confirm"); !ok || msg == "" {
		t.Fatalf("expected confirm message")
	}
	if got := result.Errors(); len(got) != 2 {
		t.Fatalf("expected two errors, got %+v", got)
	}

	values["emailAddress"] = "foo@bar.com"
	values["confirm"] = "longpassword"
	if result := ValidateActive(form, values); !result.Valid() || result.Errors() != nil {
		t.Fatalf("expected valid result, got %+v", result)
	}
}
