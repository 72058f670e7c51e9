package validators

// Verdict is the outcome of a single validator: either Valid or Invalid with a
// human readable message.
type Verdict struct {
	invalid bool
	message string
}

// Valid is the passing verdict.
var Valid = Verdict{}

// Invalid builds a failing verdict carrying message.
func Invalid(message string) Verdict {
	return Verdict{invalid: true, message: message}
}

// OK reports whether the verdict passed.
func (v Verdict) OK() bool {
	return !v.invalid
}

// Message returns the failure message, or "" for Valid.
func (v Verdict) Message() string {
	if !v.invalid {
		return ""
	}
	return v.message
}

// Validator checks value. values is a read-only snapshot of every field in
// the same form, keyed by field name; validators that only look at value can
// ignore it.
type Validator func(value string, values map[string]string) Verdict

// Check runs the validator, treating a nil validator as always passing.
func (v Validator) Check(value string, values map[string]string) Verdict {
	if v == nil {
		return Valid
	}
	return v(value, values)
}
