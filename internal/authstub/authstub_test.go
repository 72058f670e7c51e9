package authstub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	srv := New(WithCost(bcrypt.MinCost))
	h := srv.Handler()

	rec := post(t, h, "/api/users", `{"full_name":"Ada","email":"ada@example.com","password":"analytical","location":"Denver, CO","role":"pro","service_type":"Plumbing"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}

	rec = post(t, h, "/api/auth/login", `{"email":"ADA@example.com","password":"analytical"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d", rec.Code)
	}
	var resp struct {
		AuthToken string `json:"authToken"`
		User      user   `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AuthToken == "" || resp.User.Role != "pro" || resp.User.ServiceType != "Plumbing" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	rec = post(t, h, "/api/auth/login", `{"email":"ada@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterRejections(t *testing.T) {
	t.Parallel()

	srv := New(WithCost(bcrypt.MinCost), WithDemoUser())
	h := srv.Handler()

	cases := []struct {
		name     string
		body     string
		status   int
		location string
	}{
		{"taken", `{"full_name":"Demo","email":"user_name@email.com","password":"analytical","location":"x","role":"user"}`, http.StatusUnprocessableEntity, "email"},
		{"missing", `{"email":"b@example.com","password":"analytical","location":"x","role":"user"}`, http.StatusUnprocessableEntity, "full_name"},
		{"untrimmed", `{"full_name":" B","email":"b@example.com","password":"analytical","location":"x","role":"user"}`, http.StatusUnprocessableEntity, "full_name"},
		{"short password", `{"full_name":"B","email":"b@example.com","password":"short","location":"x","role":"user"}`, http.StatusUnprocessableEntity, "password"},
		{"malformed", `{`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		rec := post(t, h, "/api/users", tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: status %d, want %d", tc.name, rec.Code, tc.status)
		}
		var body apiError
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.Location != tc.location {
			t.Fatalf("%s: location %q, want %q", tc.name, body.Location, tc.location)
		}
	}
	if srv.Accounts() != 1 {
		t.Fatalf("expected only the demo account, got %d", srv.Accounts())
	}
}

func TestDemoUserCanLogin(t *testing.T) {
	t.Parallel()

	h := New(WithCost(bcrypt.MinCost), WithDemoUser()).Handler()
	rec := post(t, h, "/api/auth/login", `{"email":"user_name@email.com","password":"password"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("demo login status %d", rec.Code)
	}
}
