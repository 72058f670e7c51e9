package expr

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/visibility"
)

func values(kv ...string) visibility.Context {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return visibility.ContextFromValues(m, nil)
}

func TestEvaluatorStringComparison(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{`role == "pro"`, `role == 'pro'`, `role == pro`} {
		ok, err := eval.Eval("service_type", rule, values("role", "pro"))
		if err != nil {
			t.Fatalf("Eval(%s) returned error: %v", rule, err)
		}
		if !ok {
			t.Fatalf("expected %s to match", rule)
		}
	}

	ok, err := eval.Eval("service_type", `role != "pro"`, values("role", "user"))
	if err != nil || !ok {
		t.Fatalf("expected != to match, got %v %v", ok, err)
	}
}

func TestEvaluatorTruthyAndNot(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		rule string
		ctx  visibility.Context
		want bool
	}{
		{"newsletter", values("newsletter", "yes"), true},
		{"newsletter", values("newsletter", "false"), false},
		{"newsletter", values(), false},
		{"!newsletter", values("newsletter", ""), true},
		{`role == "pro" && (plan == gold || plan == silver)`, values("role", "pro", "plan", "silver"), true},
		{`role == "pro" && (plan == gold || plan == silver)`, values("role", "user", "plan", "silver"), false},
		{"count == 3", values("count", "3.0"), true},
		{"count != 3", values("count", "x"), true},
		{"middle == null", values("middle", ""), true},
		{"", values(), true},
	}
	for _, tc := range cases {
		got, err := eval.Eval("", tc.rule, tc.ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluatorExtras(t *testing.T) {
	t.Parallel()

	ctx := visibility.ContextFromValues(nil, map[string]any{"beta": true})
	ok, err := New().Eval("", "extras.beta == true", ctx)
	if err != nil || !ok {
		t.Fatalf("expected extras lookup to succeed, got %v %v", ok, err)
	}
}

func TestCompileCollectsIdentifiers(t *testing.T) {
	t.Parallel()

	program, err := New().Compile(`role == "pro" && !extras.beta || plan`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got := program.Identifiers()
	sort.Strings(got)
	if diff := cmp.Diff([]string{"plan", "role"}, got); diff != "" {
		t.Fatalf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{`role = "pro"`, `role ==`, `(role == pro`, `role == "pro`, `a & b`, `a | b`, `== pro`, `role == pro extra`} {
		if _, err := New().Compile(rule); err == nil {
			t.Fatalf("expected compile error for %q", rule)
		}
	}
}
