package validators

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// local-part "@" domain, with at least one dot inside the domain and no
// whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// Catalog builds validators whose messages come from a single Translator.
type Catalog struct {
	tr Translator
}

// Default uses the English dictionary.
var Default = New(nil)

// New returns a catalog bound to tr. A nil translator means English; partial
// translators fall back to English per code.
func New(tr Translator) Catalog {
	if tr == nil {
		return Catalog{tr: English}
	}
	return Catalog{tr: Fallback(tr)}
}

func (c Catalog) message(code string, params map[string]string) string {
	if c.tr == nil {
		return English.Message(code, params)
	}
	return c.tr.Message(code, params)
}

// Required fails when the value is empty once surrounding whitespace is
// removed.
func (c Catalog) Required() Validator {
	return func(value string, _ map[string]string) Verdict {
		if strings.TrimSpace(value) == "" {
			return Invalid(c.message(CodeRequired, nil))
		}
		return Valid
	}
}

// NonEmpty tolerates an absent value but rejects one that is present and
// blank, so optional fields can still refuse whitespace-only input.
func (c Catalog) NonEmpty() Validator {
	return func(value string, _ map[string]string) Verdict {
		if value != "" && strings.TrimSpace(value) == "" {
			return Invalid(c.message(CodeNonEmpty, nil))
		}
		return Valid
	}
}

// IsTrimmed fails when the value carries leading or trailing whitespace. The
// value is never trimmed on the user's behalf.
func (c Catalog) IsTrimmed() Validator {
	return func(value string, _ map[string]string) Verdict {
		if strings.TrimSpace(value) != value {
			return Invalid(c.message(CodeTrimmed, nil))
		}
		return Valid
	}
}

// ValidEmail fails unless the value looks like local@domain.tld. Empty values
// pass; pair with Required when the field is mandatory.
func (c Catalog) ValidEmail() Validator {
	return func(value string, _ map[string]string) Verdict {
		if value == "" {
			return Valid
		}
		if !emailPattern.MatchString(value) {
			return Invalid(c.message(CodeEmail, nil))
		}
		return Valid
	}
}

// Length bounds the number of characters (runes) in the value, inclusive on
// both ends. max <= 0 leaves the upper bound open. An empty value is a
// violation unless min is 0.
func (c Catalog) Length(min, max int) Validator {
	if min < 0 {
		min = 0
	}
	params := map[string]string{
		"min": strconv.Itoa(min),
		"max": strconv.Itoa(max),
	}
	return func(value string, _ map[string]string) Verdict {
		n := utf8.RuneCountInString(value)
		if n < min {
			return Invalid(c.message(CodeTooShort, params))
		}
		if max > 0 && n > max {
			return Invalid(c.message(CodeTooLong, params))
		}
		return Valid
	}
}

// Matches fails when the value differs from the value of another field in
// the same form.
func (c Catalog) Matches(field string) Validator {
	field = strings.TrimSpace(field)
	params := map[string]string{"field": field}
	return func(value string, values map[string]string) Verdict {
		if value != values[field] {
			return Invalid(c.message(CodeMismatch, params))
		}
		return Valid
	}
}

// Required uses the Default catalog.
func Required() Validator { return Default.Required() }

// NonEmpty uses the Default catalog.
func NonEmpty() Validator { return Default.NonEmpty() }

// IsTrimmed uses the Default catalog.
func IsTrimmed() Validator { return Default.IsTrimmed() }

// ValidEmail uses the Default catalog.
func ValidEmail() Validator { return Default.ValidEmail() }

// Length uses the Default catalog.
func Length(min, max int) Validator { return Default.Length(min, max) }

// Matches uses the Default catalog.
func Matches(field string) Validator { return Default.Matches(field) }
