// Package submit describes what leaves the engine when a form is submitted:
// typed payloads, adapters from typed callbacks to the session's submitter
// shape, and the error a submitter reports back.
package submit

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/auth"
)

// Registration is the sign-up payload.
type Registration struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	ServiceType string `json:"service_type"`
}

// RegistrationFromValues reads a sign-up payload from active field values.
// Missing keys, such as service_type for non-pro accounts, become "".
func RegistrationFromValues(values map[string]string) Registration {
	return Registration{
		FullName:    values["full_name"],
		Email:       values["email"],
		Password:    values["password"],
		Location:    values["location"],
		Role:        values["role"],
		ServiceType: values["service_type"],
	}
}

// Login is the sign-in payload.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginFromValues reads a sign-in payload. The sign-in form names its email
// field emailAddress; email is accepted too so a sign-up form can log in
// right after registering.
func LoginFromValues(values map[string]string) Login {
	email := values["emailAddress"]
	if email == "" {
		email = values["email"]
	}
	return Login{Email: email, Password: values["password"]}
}

// Func submits raw field values and reports the resulting auth state.
type Func func(ctx context.Context, payload map[string]string) (auth.Snapshot, error)

// Submit implements the session submitter contract.
func (fn Func) Submit(ctx context.Context, payload map[string]string) (auth.Snapshot, error) {
	return fn(ctx, payload)
}

// RegistrationFunc receives a typed sign-up payload.
type RegistrationFunc func(ctx context.Context, reg Registration) (auth.Snapshot, error)

// Submit implements the session submitter contract.
func (fn RegistrationFunc) Submit(ctx context.Context, payload map[string]string) (auth.Snapshot, error) {
	return fn(ctx, RegistrationFromValues(payload))
}

// LoginFunc receives a typed sign-in payload.
type LoginFunc func(ctx context.Context, login Login) (auth.Snapshot, error)

// Submit implements the session submitter contract.
func (fn LoginFunc) Submit(ctx context.Context, payload map[string]string) (auth.Snapshot, error) {
	return fn(ctx, LoginFromValues(payload))
}
