// Package auth describes the authentication state the form engine reads but
// never owns. Snapshots are supplied by the environment (a login/registration
// call, a global store) and re-evaluated whenever they change.
package auth

import "strings"

// Role identifies the kind of account behind an authenticated snapshot.
type Role string

const (
	// RoleNone marks an unset role.
	RoleNone Role = ""
	// RoleUser is the generic consumer account.
	RoleUser Role = "user"
	// RolePro is the service provider account.
	RolePro Role = "pro"
)

// ParseRole normalises a raw role string. Unknown values map to RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser
	case RolePro:
		return RolePro
	default:
		return RoleNone
	}
}

// Valid reports whether the role is one of the known account kinds.
func (r Role) Valid() bool {
	return r == RoleUser || r == RolePro
}

func (r Role) String() string {
	return string(r)
}

// Snapshot is a read-only view of the current login status.
type Snapshot struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	Role            Role `json:"role,omitempty"`
}

// Anonymous is the zero snapshot: nobody is signed in.
var Anonymous = Snapshot{}

// Authenticated builds a signed-in snapshot for the supplied role.
func Authenticated(role Role) Snapshot {
	return Snapshot{IsAuthenticated: true, Role: role}
}

// Source supplies the latest snapshot on demand.
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc adapts a function into a Source.
type SourceFunc func() Snapshot

// Snapshot delegates to the underlying function.
func (fn SourceFunc) Snapshot() Snapshot {
	if fn == nil {
		return Anonymous
	}
	return fn()
}
