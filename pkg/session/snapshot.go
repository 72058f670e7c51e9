package session

import (
	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/registry"
)

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID          string                         `json:"id"`
	FormID      string                         `json:"form_id"`
	State       State                          `json:"state"`
	Fields      map[string]registry.FieldState `json:"fields"`
	Active      []string                       `json:"active"`
	Submitting  bool                           `json:"submitting"`
	Submitted   bool                           `json:"submitted"`
	SubmitError string                         `json:"submit_error,omitempty"`
	Attempts    int                            `json:"attempts"`
	Auth        auth.Snapshot                  `json:"auth"`
	Decision    navigation.Decision            `json:"-"`
}

// Errors returns the non-empty field messages.
func (s Snapshot) Errors() map[string]string {
	out := make(map[string]string)
	for name, state := range s.Fields {
		if state.Error != "" {
			out[name] = state.Error
		}
	}
	return out
}
