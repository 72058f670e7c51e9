package validators

import (
	"errors"
	"testing"
)

func TestBuildKnownSpecs(t *testing.T) {
	t.Parallel()

	specs := []Spec{
		{Name: "required"},
		{Name: "nonEmpty"},
		{Name: "ISTRIMMED"},
		{Name: "validEmail"},
		{Name: "length", Min: 1, Max: 3},
		{Name: "matches", Field: "password"},
	}
	built, err := Default.BuildAll(specs)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(built) != len(specs) {
		t.Fatalf("expected %d validators, got %d", len(specs), len(built))
	}
	if built[4].Check("abcd", nil).OK() {
		t.Fatalf("expected built length validator to enforce max")
	}
}

func TestBuildRejectsBadSpecs(t *testing.T) {
	t.Parallel()

	if _, err := Default.Build(Spec{Name: "zipcode"}); !errors.Is(err, ErrUnknownValidator) {
		t.Fatalf("expected ErrUnknownValidator, got %v", err)
	}
	if _, err := Default.Build(Spec{Name: "length", Min: 5, Max: 2}); err == nil {
		t.Fatalf("expected inverted bounds to fail")
	}
	if _, err := Default.Build(Spec{Name: "matches"}); err == nil {
		t.Fatalf("expected matches without field to fail")
	}
	if _, err := Default.BuildAll([]Spec{{Name: "required"}, {Name: "nope"}}); err == nil {
		t.Fatalf("expected BuildAll to surface the failing spec")
	}
}

func TestSpecReferences(t *testing.T) {
	t.Parallel()

	if got := (Spec{Name: "matches", Field: " password "}).References(); got != "password" {
		t.Fatalf("unexpected reference %q", got)
	}
	if got := (Spec{Name: "required", Field: "x"}).References(); got != "" {
		t.Fatalf("expected no reference, got %q", got)
	}
}
