// Package navigation maps authentication state to where the user should end
// up. It only decides; performing the route change belongs to the caller.
package navigation

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/auth"
)

// Destination is an opaque identifier resolved by the external router.
type Destination string

const (
	// MyProfile is the pro account's own profile page.
	MyProfile Destination = "my-profile"
	// ProfilesList is the browsable list of pro profiles.
	ProfilesList Destination = "profiles-list"
)

// Routes maps destinations to the client routes of the profiles app.
var Routes = map[Destination]string{
	MyProfile:    "/profiles/myprofile",
	ProfilesList: "/profiles",
}

// Path returns the route for d, or "" when none is registered.
func (d Destination) Path() string {
	return Routes[d]
}

// Decision is either StayOnForm or a redirect to a destination.
type Decision struct {
	redirect    bool
	destination Destination
}

// StayOnForm keeps the form on screen.
var StayOnForm = Decision{}

// RedirectTo leaves the form for dest.
func RedirectTo(dest Destination) Decision {
	return Decision{redirect: true, destination: dest}
}

// Redirect reports whether the decision leaves the form, and where to.
func (d Decision) Redirect() (Destination, bool) {
	return d.destination, d.redirect
}

// ShouldRender reports whether the form should be shown at all.
func (d Decision) ShouldRender() bool {
	return !d.redirect
}

func (d Decision) String() string {
	if !d.redirect {
		return "stay"
	}
	return "redirect:" + string(d.destination)
}

// Decide is a pure function of the snapshot: anonymous users stay, pros go
// to their own profile, everyone else to the profiles list.
func Decide(snapshot auth.Snapshot) Decision {
	if !snapshot.IsAuthenticated {
		return StayOnForm
	}
	if snapshot.Role == auth.RolePro {
		return RedirectTo(MyProfile)
	}
	return RedirectTo(ProfilesList)
}

// Watch re-runs Decide for every snapshot received and emits the decision
// whenever it differs from the previous one. The first snapshot always
// produces a decision. The output channel closes when snapshots closes or ctx
// is done.
func Watch(ctx context.Context, snapshots <-chan auth.Snapshot) <-chan Decision {
	out := make(chan Decision, 1)
	go func() {
		defer close(out)
		var (
			last    Decision
			started bool
		)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				next := Decide(snap)
				if started && next == last {
					continue
				}
				started, last = true, next
				select {
				case out <- next:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
