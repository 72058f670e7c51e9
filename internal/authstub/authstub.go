// Package authstub is an in-memory auth backend speaking the same HTTP
// contract as the real one. The CLI uses it for offline runs and the client
// tests run against it.
package authstub

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formflow/pkg/submit"
)

// DemoEmail and DemoPassword identify the seeded demo account.
const (
	DemoEmail    = "user_name@email.com"
	DemoPassword = "password"
)

var errTaken = errors.New("authstub: username already taken")

type user struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	ServiceType string `json:"service_type,omitempty"`
}

type account struct {
	user user
	hash []byte
}

type apiError struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// Server stores accounts in memory.
type Server struct {
	cost int

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]string
}

// Option configures a Server.
type Option func(*Server)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Server) {
		s.cost = cost
	}
}

// WithDemoUser seeds the shared demo account.
func WithDemoUser() Option {
	return func(s *Server) {
		_ = s.add(submit.Registration{
			FullName: "Demo User",
			Email:    DemoEmail,
			Password: DemoPassword,
			Location: "Denver, CO",
			Role:     "user",
		})
	}
}

// New returns an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		cost:     bcrypt.DefaultCost,
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler serves the auth routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	return mux
}

// Accounts returns the number of registered accounts.
func (s *Server) Accounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg submit.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Reason: "BadRequest", Message: "Malformed JSON"})
		return
	}

	required := []struct{ name, value string }{
		{"full_name", reg.FullName},
		{"email", reg.Email},
		{"password", reg.Password},
		{"location", reg.Location},
		{"role", reg.Role},
	}
	for _, field := range required {
		if field.value == "" {
			writeValidation(w, "Missing field", field.name)
			return
		}
	}
	for _, field := range required {
		if field.value != strings.TrimSpace(field.value) {
			writeValidation(w, "Cannot start or end with whitespace", field.name)
			return
		}
	}
	if n := len(reg.Password); n < 8 || n > 72 {
		writeValidation(w, "Must be between 8 and 72 characters long", "password")
		return
	}

	if err := s.add(reg); err != nil {
		if errors.Is(err, errTaken) {
			writeValidation(w, "Username already taken", "email")
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiError{Code: http.StatusInternalServerError, Reason: "InternalError", Message: "Internal server error"})
		return
	}

	s.mu.Lock()
	created := s.accounts[strings.ToLower(reg.Email)].user
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var login submit.Login
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(login.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(login.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = acct.user.Email
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		AuthToken string `json:"authToken"`
		User      user   `json:"user"`
	}{AuthToken: token, User: acct.user})
}

func (s *Server) add(reg submit.Registration) error {
	key := strings.ToLower(reg.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return errTaken
	}
	u := user{
		ID:       uuid.NewString(),
		FullName: reg.FullName,
		Email:    reg.Email,
		Location: reg.Location,
		Role:     reg.Role,
	}
	if reg.Role == "pro" {
		u.ServiceType = reg.ServiceType
	}
	s.accounts[key] = account{user: u, hash: hash}
	return nil
}

func writeValidation(w http.ResponseWriter, message, location string) {
	writeJSON(w, http.StatusUnprocessableEntity, apiError{
		Code:     http.StatusUnprocessableEntity,
		Reason:   "ValidationError",
		Message:  message,
		Location: location,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
