// Package authapi talks to the auth backend: it registers users, logs them
// in and turns the result into an auth snapshot for the form session.
package authapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// Backend routes.
const (
	PathUsers = "/api/users"
	PathLogin = "/api/auth/login"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 5
	defaultBurst   = 5
	maxErrorBody   = 64 << 10
)

// Client is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	contract *Contract

	mu    sync.RWMutex
	token string
	user  User
}

// User is the account returned by the backend.
type User struct {
	ID          string `json:"id,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email"`
	Location    string `json:"location,omitempty"`
	Role        string `json:"role"`
	ServiceType string `json:"service_type,omitempty"`
}

type loginResponse struct {
	AuthToken string `json:"authToken"`
	User      User   `json:"user"`
}

type errorResponse struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithContract replaces the embedded OpenAPI contract. A nil contract turns
// request checking off.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		c.contract = contract
	}
}

// New builds a client for baseURL with the embedded contract loaded.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("authapi: base URL is required")
	}
	contract, err := DefaultContract(ctx)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		contract: contract,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Register creates the account and, like the web client, logs straight in
// with the same credentials.
func (c *Client) Register(ctx context.Context, reg submit.Registration) (auth.Snapshot, error) {
	var user User
	if err := c.post(ctx, PathUsers, reg, http.StatusCreated, &user); err != nil {
		return auth.Anonymous, fmt.Errorf("authapi: register: %w", err)
	}
	return c.Login(ctx, submit.Login{Email: reg.Email, Password: reg.Password})
}

// Login exchanges credentials for a token and reports the user's role.
func (c *Client) Login(ctx context.Context, login submit.Login) (auth.Snapshot, error) {
	var resp loginResponse
	if err := c.post(ctx, PathLogin, login, http.StatusOK, &resp); err != nil {
		if se, ok := submit.AsError(err); ok && se.Status == http.StatusUnauthorized {
			se.Message = "Incorrect email or password"
			se.Fields = nil
		}
		return auth.Anonymous, fmt.Errorf("authapi: login: %w", err)
	}
	if resp.AuthToken == "" {
		return auth.Anonymous, errors.New("authapi: login: response carries no token")
	}

	c.mu.Lock()
	c.token = resp.AuthToken
	c.user = resp.User
	c.mu.Unlock()
	return auth.Authenticated(auth.ParseRole(resp.User.Role)), nil
}

// Logout forgets the stored token.
func (c *Client) Logout() auth.Snapshot {
	c.mu.Lock()
	c.token = ""
	c.user = User{}
	c.mu.Unlock()
	return auth.Anonymous
}

// Token returns the bearer token of the last successful login.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns the account of the last successful login.
func (c *Client) User() User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Snapshot implements auth.Source.
func (c *Client) Snapshot() auth.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return auth.Anonymous
	}
	return auth.Authenticated(auth.ParseRole(c.user.Role))
}

// Registration adapts the client to the sign-up session.
func (c *Client) Registration() submit.RegistrationFunc {
	return c.Register
}

// Authentication adapts the client to the sign-in session.
func (c *Client) Authentication() submit.LoginFunc {
	return c.Login
}

func (c *Client) post(ctx context.Context, path string, body any, want int, out any) error {
	if c.contract != nil {
		if err := c.contract.ValidateRequest(http.MethodPost, path, body); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	out := &submit.Error{Status: resp.StatusCode}

	var body errorResponse
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &body) == nil {
		out.Reason = body.Reason
		out.Message = body.Message
		if body.Location != "" && body.Message != "" {
			out.Fields = map[string]string{body.Location: body.Message}
		}
	}
	if out.Message == "" {
		out.Message = fallbackMessage(resp.StatusCode)
	}
	return out
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Incorrect email or password"
	case status >= 500:
		return "Unable to reach the server, please try again"
	default:
		return http.StatusText(status)
	}
}
