package schema

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/kbukum/scod/validation"
)

// Type defines the contract for field validation.
// Parse returns the validated, possibly coerced, value.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Parse checks that value conforms to the type and returns its parsed form.
	Parse(value any) (any, error)
}

// Omittable is implemented by types that accept a missing field.
type Omittable interface {
	Type
	// Absent returns the value used for a missing field and whether a
	// missing field is accepted at all. A nil value leaves the field out.
	Absent() (any, bool)
}

// --- Scalars ---

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", typeName(value))
	}
	return s, nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Parse(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return nil, outOfIntRange(v)
		}
		return int(v), nil
	case uint:
		if uint64(v) > math.MaxInt {
			return nil, outOfIntRange(v)
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return nil, outOfIntRange(v)
		}
		return int(v), nil
	case int8, int16, int32, uint8, uint16, uint32:
		return cast.ToIntE(v)
	case float32, float64:
		// JSON numbers decode as float64
		f, err := wholeNumber(cast.ToFloat64(v), "int")
		if err != nil {
			return nil, err
		}
		if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
			return nil, outOfIntRange(v)
		}
		return int(f), nil
	case string:
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected int, got %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected int, got %s", typeName(value))
	}
}

func outOfIntRange(v any) error {
	return fmt.Errorf("expected int, got out of range number %v", v)
}

func wholeNumber(f float64, want string) (float64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected %s, got non-integral number %v", want, f)
	}
	return f, nil
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Parse(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToFloat64E(v)
	case string:
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected float, got %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected float, got %s", typeName(value))
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Parse(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected bool, got %q", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected bool, got %s", typeName(value))
	}
}

type durationType struct{}

func (durationType) Name() string { return "duration" }

func (durationType) Parse(value any) (any, error) {
	switch v := value.(type) {
	case float32, float64:
		// nanoseconds, as JSON numbers decode
		f, err := wholeNumber(cast.ToFloat64(v), "duration")
		if err != nil {
			return nil, err
		}
		if f >= float64(math.MaxInt64) || f < float64(math.MinInt64) {
			return nil, fmt.Errorf("expected duration, got out of range number %v", v)
		}
		return time.Duration(int64(f)), nil
	case time.Duration, string, int, int64:
		d, err := cast.ToDurationE(value)
		if err != nil {
			return nil, fmt.Errorf("expected duration, got %v", value)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("expected duration, got %s", typeName(value))
	}
}

// formatType is a string checked against a validator tag.
type formatType struct {
	tag string
}

func (t formatType) Name() string { return t.tag }

func (t formatType) Parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", typeName(value))
	}
	if msg, ok := validation.Var(s, t.tag); !ok {
		return nil, fmt.Errorf("%s", msg)
	}
	return s, nil
}

type enumType struct {
	values []string
}

func (t enumType) Name() string { return "enum(" + strings.Join(t.values, "|") + ")" }

func (t enumType) Parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", typeName(value))
	}
	if !slices.Contains(t.values, s) {
		return nil, fmt.Errorf("must be one of: %s", strings.Join(t.values, ", "))
	}
	return s, nil
}

type anyType struct{}

func (anyType) Name() string                 { return "any" }
func (anyType) Parse(value any) (any, error) { return value, nil }
func (anyType) Absent() (any, bool)          { return nil, true }

// voidType accepts only the absence of a value.
type voidType struct{}

func (voidType) Name() string { return "void" }

func (voidType) Parse(value any) (any, error) {
	if value == nil || value == (struct{}{}) {
		return nil, nil
	}
	return nil, fmt.Errorf("expected no value, got %s", typeName(value))
}

func (voidType) Absent() (any, bool) { return nil, true }

type customType struct {
	name  string
	parse func(any) (any, error)
}

func (t customType) Name() string                 { return t.name }
func (t customType) Parse(value any) (any, error) { return t.parse(value) }

// --- Composites ---

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Parse(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("expected list, got %s", typeName(value))
	}

	out := make([]any, rv.Len())
	var issues issueList
	for i := range rv.Len() {
		elem := rv.Index(i).Interface()
		parsed, err := t.elem.Parse(elem)
		if err != nil {
			issues.addErr(fmt.Sprintf("[%d]", i), elem, err)
			continue
		}
		out[i] = parsed
	}
	if err := issues.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// objectType is a nested shape parsed in strict mode.
type objectType struct {
	shape Shape
}

func (objectType) Name() string { return "object" }

func (t objectType) Parse(value any) (any, error) {
	return Parse(t.shape, value, Strict)
}

func (t objectType) Absent() (any, bool) {
	for _, ft := range t.shape {
		if _, ok := absent(ft); !ok {
			return nil, false
		}
	}
	v, err := Parse(t.shape, nil, Strict)
	if err != nil {
		return nil, false
	}
	return v, true
}

type optionalType struct {
	inner Type
}

func (t optionalType) Name() string { return t.inner.Name() + "?" }

func (t optionalType) Parse(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return t.inner.Parse(value)
}

func (optionalType) Absent() (any, bool) { return nil, true }

type defaultType struct {
	inner Type
	value any
}

func (t defaultType) Name() string { return t.inner.Name() }

func (t defaultType) Parse(value any) (any, error) {
	if value == nil {
		return t.value, nil
	}
	return t.inner.Parse(value)
}

func (t defaultType) Absent() (any, bool) { return t.value, true }

// --- Factory Functions ---

// String creates a string type.
func String() Type { return stringType{} }

// Int creates an integer type. Whole floats and numeric strings are accepted.
func Int() Type { return intType{} }

// Float creates a float type. Integers and numeric strings are accepted.
func Float() Type { return floatType{} }

// Bool creates a boolean type. "true", "false", "1", "0" are accepted.
func Bool() Type { return boolType{} }

// Duration creates a time.Duration type accepting "1m30s" style strings.
func Duration() Type { return durationType{} }

// URL creates a string type that must be a valid URL.
func URL() Type { return formatType{tag: "url"} }

// Format creates a string type checked against a go-playground/validator tag,
// e.g. Format("email") or Format("hostname_port").
func Format(tag string) Type { return formatType{tag: tag} }

// Enum creates a string type restricted to the given values.
func Enum(values ...string) Type { return enumType{values: values} }

// Any accepts every value, including a missing one.
func Any() Type { return anyType{} }

// Void accepts only the absence of a value (nil or struct{}{}).
func Void() Type { return voidType{} }

// Custom creates a type from a user-defined parse function.
func Custom(name string, parse func(any) (any, error)) Type {
	return customType{name: name, parse: parse}
}

// Slice creates a list type whose elements all parse as elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Object creates a nested object type parsed strictly against shape.
func Object(shape Shape) Type { return objectType{shape: shape} }

// Optional makes t accept nil and a missing field.
func Optional(t Type) Type { return optionalType{inner: t} }

// Default makes t fall back to value when the field is missing or nil.
func Default(t Type, value any) Type { return defaultType{inner: t, value: value} }

// ShapeOf returns the nested shape of an Object type.
func ShapeOf(t Type) (Shape, bool) {
	o, ok := t.(objectType)
	return o.shape, ok
}

func absent(t Type) (any, bool) {
	if o, ok := t.(Omittable); ok {
		return o.Absent()
	}
	return nil, false
}

func typeName(v any) string {
	if v == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}
