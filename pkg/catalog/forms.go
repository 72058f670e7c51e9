package catalog

import (
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// Built-in form identifiers.
const (
	SignUpID = "signup"
	SignInID = "signin"
)

// Options supplies the runtime choice lists of the sign-up form. Empty lists
// keep the catalog defaults.
type Options struct {
	Locations    []string
	ServiceTypes []string
}

// SignUp builds the registration form. service_type is only active when
// role is "pro".
func SignUp(opts Options) (model.Form, error) {
	form, err := NewLoader().Builtin(SignUpID)
	if err != nil {
		return model.Form{}, err
	}
	if len(opts.Locations) > 0 {
		if form, err = form.WithOptions("location", opts.Locations); err != nil {
			return model.Form{}, err
		}
	}
	if len(opts.ServiceTypes) > 0 {
		if form, err = form.WithOptions("service_type", opts.ServiceTypes); err != nil {
			return model.Form{}, err
		}
	}
	return form, nil
}

// SignIn builds the login form.
func SignIn() (model.Form, error) {
	return NewLoader().Builtin(SignInID)
}

// DemoLogin returns the shared demo account. It is sent straight to the
// login endpoint without going through a form: its password is shorter than
// the sign-in form allows.
func DemoLogin() submit.Login {
	return submit.Login{Email: "user_name@email.com", Password: "password"}
}
