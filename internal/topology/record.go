package topology

import "fmt"

// Record is one raw object from the broker's management API, kept schema-less
// because brokers attach version-specific extra fields to every resource.
type Record map[string]any

// StructuralError reports a record that lacks a required identity field.
// It aborts the running command; identity fields are never defaulted.
type StructuralError struct {
	Entity string
	Field  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s record is missing required field %q", e.Entity, e.Field)
}

// String returns the named field as a string. The second return value is
// false when the field is absent or not a string.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the named field as a bool, defaulting to false when the field
// is absent or not a bool.
func (r Record) Bool(field string) bool {
	v, ok := r[field].(bool)
	return ok && v
}

// Int returns the named field as an int. JSON numbers decode as float64, so
// both representations are accepted.
func (r Record) Int(field string) (int, bool) {
	switch v := r[field].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
