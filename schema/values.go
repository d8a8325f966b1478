package schema

import (
	"time"

	"github.com/spf13/cast"
)

// Values holds the output of Parse: field name to parsed value.
type Values map[string]any

// Get returns the raw value of key.
func (v Values) Get(key string) (any, bool) {
	val, ok := v[key]
	return val, ok
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// String returns key as a string, or "" when missing.
func (v Values) String(key string) string { return cast.ToString(v[key]) }

// Int returns key as an int, or 0 when missing.
func (v Values) Int(key string) int { return cast.ToInt(v[key]) }

// Float returns key as a float64, or 0 when missing.
func (v Values) Float(key string) float64 { return cast.ToFloat64(v[key]) }

// Bool returns key as a bool, or false when missing.
func (v Values) Bool(key string) bool { return cast.ToBool(v[key]) }

// Duration returns key as a time.Duration, or 0 when missing.
func (v Values) Duration(key string) time.Duration { return cast.ToDuration(v[key]) }

// Strings returns key as a string slice.
func (v Values) Strings(key string) []string { return cast.ToStringSlice(v[key]) }

// Object returns a nested object field.
func (v Values) Object(key string) Values {
	switch o := v[key].(type) {
	case Values:
		return o
	case map[string]any:
		return o
	default:
		return Values{}
	}
}

// Decode copies the values into out, a pointer to a struct with json tags.
func (v Values) Decode(out any) error {
	return decode(map[string]any(v), out, false)
}
