package validators

import (
	"strings"
)

// Message codes passed to a Translator.
const (
	CodeRequired = "required"
	CodeNonEmpty = "non_empty"
	CodeTrimmed  = "trimmed"
	CodeEmail    = "email"
	CodeTooShort = "too_short"
	CodeTooLong  = "too_long"
	CodeMismatch = "mismatch"
)

// Translator resolves a message code into display text. params carries the
// values referenced by the message (min, max, field).
type Translator interface {
	Message(code string, params map[string]string) string
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(code string, params map[string]string) string

// Message delegates to the underlying function.
func (fn TranslatorFunc) Message(code string, params map[string]string) string {
	return fn(code, params)
}

// English is the built-in dictionary.
var English Translator = TranslatorFunc(englishMessage)

func englishMessage(code string, params map[string]string) string {
	switch code {
	case CodeRequired:
		return "Required"
	case CodeNonEmpty:
		return "Cannot be empty"
	case CodeTrimmed:
		return "Cannot start or end with whitespace"
	case CodeEmail:
		return "Must be a valid email address"
	case CodeTooShort:
		return "Must be at least " + params["min"] + " characters long"
	case CodeTooLong:
		return "Must be at most " + params["max"] + " characters long"
	case CodeMismatch:
		if field := strings.TrimSpace(params["field"]); field != "" {
			return "Does not match " + field
		}
		return "Does not match"
	}
	return code
}

// Fallback wraps primary so that empty or code-echo translations fall back to
// the English dictionary.
func Fallback(primary Translator) Translator {
	if primary == nil {
		return English
	}
	return TranslatorFunc(func(code string, params map[string]string) string {
		msg := strings.TrimSpace(primary.Message(code, params))
		if msg == "" || msg == code {
			return English.Message(code, params)
		}
		return msg
	})
}
