package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/auth"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		snap auth.Snapshot
		want Decision
	}{
		{"anonymous", auth.Anonymous, StayOnForm},
		{"anonymous with stale pro role", auth.Snapshot{Role: auth.RolePro}, StayOnForm},
		{"anonymous with user role", auth.Snapshot{Role: auth.RoleUser}, StayOnForm},
		{"pro", auth.Authenticated(auth.RolePro), RedirectTo(MyProfile)},
		{"user", auth.Authenticated(auth.RoleUser), RedirectTo(ProfilesList)},
		{"unset role", auth.Authenticated(auth.RoleNone), RedirectTo(ProfilesList)},
	}
	for _, tc := range cases {
		for i := 0; i < 3; i++ {
			if got := Decide(tc.snap); got != tc.want {
				t.Fatalf("%s: Decide = %s, want %s", tc.name, got, tc.want)
			}
		}
	}
}

func TestDecisionAccessors(t *testing.T) {
	t.Parallel()

	if !StayOnForm.ShouldRender() {
		t.Fatalf("stay decision must render the form")
	}
	if _, ok := StayOnForm.Redirect(); ok {
		t.Fatalf("stay decision must not redirect")
	}
	dest, ok := RedirectTo(MyProfile).Redirect()
	if !ok || dest != MyProfile || dest.Path() != "/profiles/myprofile" {
		t.Fatalf("unexpected redirect %q %v", dest, ok)
	}
	if ProfilesList.Path() != "/profiles" {
		t.Fatalf("unexpected profiles route")
	}
}

func TestWatchEmitsOnChange(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := make(chan auth.Snapshot)
	out := Watch(ctx, in)

	go func() {
		defer close(in)
		for _, snap := range []auth.Snapshot{
			auth.Anonymous,
			auth.Anonymous,
			auth.Authenticated(auth.RoleUser),
			auth.Authenticated(auth.RoleUser),
			auth.Authenticated(auth.RolePro),
		} {
			select {
			case in <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	var got []string
	for decision := range out {
		got = append(got, decision.String())
	}
	want := []string{"stay", "redirect:profiles-list", "redirect:my-profile"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
}
