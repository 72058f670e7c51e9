// Package formflow is the entry point of the form engine: it wires the
// built-in sign-up and sign-in catalogs to a session and an auth backend.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/authapi"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Session aliases session.Session for callers that only import the root
// package.
type Session = session.Session

// Decision aliases navigation.Decision.
type Decision = navigation.Decision

// Snapshot aliases auth.Snapshot.
type Snapshot = auth.Snapshot

// NewSignUp starts a registration session backed by client. The session is
// bootstrapped with the client's current auth state, so a signed-in user is
// redirected straight away.
func NewSignUp(client *authapi.Client, opts catalog.Options, sessionOpts ...session.Option) (*Session, error) {
	form, err := catalog.SignUp(opts)
	if err != nil {
		return nil, err
	}
	sessionOpts = append([]session.Option{session.WithAuth(client.Snapshot())}, sessionOpts...)
	return session.New(form, client.Registration(), sessionOpts...)
}

// NewSignIn starts a login session backed by client.
func NewSignIn(client *authapi.Client, sessionOpts ...session.Option) (*Session, error) {
	form, err := catalog.SignIn()
	if err != nil {
		return nil, err
	}
	sessionOpts = append([]session.Option{session.WithAuth(client.Snapshot())}, sessionOpts...)
	return session.New(form, client.Authentication(), sessionOpts...)
}

// DemoSignIn logs the demo account in through client and feeds the result
// to sess, returning the updated decision.
func DemoSignIn(ctx context.Context, client *authapi.Client, sess *Session) (Decision, error) {
	snap, err := client.Login(ctx, catalog.DemoLogin())
	if err != nil {
		return sess.Decision(), err
	}
	decision, _ := sess.ObserveAuth(snap)
	return decision, nil
}
