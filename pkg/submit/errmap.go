package submit

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// First returns the first message per field, which is what a form shows.
func (m ErrorMapping) First() map[string]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Fields))
	for name, messages := range m.Fields {
		if len(messages) > 0 {
			out[name] = messages[0]
		}
	}
	return out
}

// MapErrorPayload resolves the keys of payload (field names, dotted paths or
// JSON pointers such as "/body/email") against the declared field names.
// Keys that match no field, and form-level keys, end up in Form so no message
// is lost. Messages are sanitized.
func MapErrorPayload(fields []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]string, len(fields))
	for _, name := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		known[foldName(name)] = name
	}

	for _, rawPath := range sortedKeys(payload) {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}
		name, formLevel := mapErrorPath(rawPath, known)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapError folds an *Error into a mapping: its Fields go through
// MapErrorPayload, its Message becomes a form-level message.
func MapError(fields []string, err *Error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	payload := make(map[string][]string, len(err.Fields)+1)
	for key, msg := range err.Fields {
		payload[key] = append(payload[key], msg)
	}
	mapping := MapErrorPayload(fields, payload)
	if len(err.Fields) == 0 && err.Message != "" {
		mapping.Form = normalizeMessages(append(mapping.Form, err.Message))
	}
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		cleaned := Sanitize(message)
		if cleaned == "" {
			continue
		}
		if _, exists := seen[cleaned]; exists {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	// Flat forms: the deepest segment naming a field wins, after wrapper
	// segments and array indexes are dropped.
	candidates := stripNumericSegments(dropWrapperSegments(segments))
	for i := len(candidates) - 1; i >= 0; i-- {
		if name, ok := known[foldName(candidates[i])]; ok {
			return name, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}
	clean = strings.NewReplacer("[", ".", "]", "", "//", "/").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"user":       {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// foldName makes fullName, full_name and FULL-NAME compare equal.
func foldName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
