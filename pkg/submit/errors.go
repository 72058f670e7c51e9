package submit

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Error is returned by submitters that can explain a rejection. Message is
// the form-level text; Fields holds per-field messages keyed by field name.
type Error struct {
	Status  int
	Reason  string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("submit: ")
	if e.Reason != "" {
		b.WriteString(e.Reason)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("rejected")
	}
	if e.Status > 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	return b.String()
}

// FieldError builds an Error attributing message to a single field.
func FieldError(field, message string) *Error {
	return &Error{
		Reason:  "ValidationError",
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// Describe returns the sanitized form-level message for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := AsError(err); ok {
		if msg := Sanitize(se.Message); msg != "" {
			return msg
		}
		if se.Reason != "" {
			return Sanitize(se.Reason)
		}
	}
	if msg := Sanitize(err.Error()); msg != "" {
		return msg
	}
	return "Submission failed"
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// Sanitize strips markup from externally supplied text before it is stored
// as a form or field error. The result is plain text, not HTML.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := messageSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}
