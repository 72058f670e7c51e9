package formflow

import (
	"context"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formflow/internal/authstub"
	"github.com/goliatone/go-formflow/pkg/authapi"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

func newClient(t *testing.T) *authapi.Client {
	t.Helper()
	srv := httptest.NewServer(authstub.New(authstub.WithCost(bcrypt.MinCost), authstub.WithDemoUser()).Handler())
	t.Cleanup(srv.Close)
	client, err := authapi.New(context.Background(), srv.URL, authapi.WithRateLimit(0, 0))
	if err != nil {
		t.Fatalf("authapi.New: %v", err)
	}
	return client
}

func TestSignUpEndToEnd(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	sess, err := NewSignUp(client, catalog.Options{})
	if err != nil {
		t.Fatalf("NewSignUp: %v", err)
	}
	values := map[string]string{
		"full_name":    "Grace Hopper",
		"email":        "grace@example.com",
		"password":     "compilers",
		"location":     "Boston, MA",
		"role":         "pro",
		"service_type": "Electrical",
	}
	attempt, err := sess.SubmitWith(context.Background(), values)
	if err != nil {
		t.Fatalf("SubmitWith: %v", err)
	}
	outcome, err := attempt.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !outcome.Succeeded() {
		t.Fatalf("submit failed: %v", outcome.Err)
	}
	if sess.Decision() != navigation.RedirectTo(navigation.MyProfile) {
		t.Fatalf("unexpected decision %s", sess.Decision())
	}

	again, err := NewSignIn(client)
	if err != nil {
		t.Fatalf("NewSignIn: %v", err)
	}
	if again.Decision().ShouldRender() {
		t.Fatalf("signed-in client should skip the sign-in form")
	}
}

func TestDemoSignIn(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	sess, err := NewSignUp(client, catalog.Options{})
	if err != nil {
		t.Fatalf("NewSignUp: %v", err)
	}
	decision, err := DemoSignIn(context.Background(), client, sess)
	if err != nil {
		t.Fatalf("DemoSignIn: %v", err)
	}
	if decision != navigation.RedirectTo(navigation.ProfilesList) {
		t.Fatalf("unexpected decision %s", decision)
	}
}
