package schema

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Shape is a map of field names to their expected types.
// Example: {"api_key": String(), "retries": Int(), "tags": Slice(String())}
type Shape map[string]Type

// Mode selects how Parse treats missing fields.
type Mode int

const (
	// Strict requires every field whose type does not accept absence.
	Strict Mode = iota
	// Partial makes every field optional.
	Partial
)

func (m Mode) String() string {
	if m == Partial {
		return "partial"
	}
	return "strict"
}

// Keys returns the field names in sorted order.
func (s Shape) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Parse validates value against shape. value must be nil (treated as an
// empty object) or a map with string keys. Unknown keys are rejected in
// both modes.
func Parse(shape Shape, value any, mode Mode) (Values, error) {
	in, ok := toMap(value)
	if !ok {
		return nil, &ValidationError{Issues: []Issue{{
			Reason: "expected object, got " + typeName(value),
			Value:  value,
		}}}
	}

	var issues issueList
	for _, key := range slices.Sorted(maps.Keys(in)) {
		if _, known := shape[key]; !known {
			issues.add(key, "unknown field", in[key])
		}
	}

	out := make(Values, len(shape))
	for _, name := range shape.Keys() {
		typ := shape[name]
		raw, present := in[name]
		if !present {
			if mode == Partial {
				continue
			}
			def, ok := absent(typ)
			if !ok {
				issues.add(name, "required", nil)
				continue
			}
			if def != nil {
				out[name] = def
			}
			continue
		}

		parsed, err := typ.Parse(raw)
		if err != nil {
			issues.addErr(name, raw, err)
			continue
		}
		if parsed != nil {
			out[name] = parsed
		}
	}

	if err := issues.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return v, true
	case Values:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Describe renders the shape as type strings. Nested objects become nested maps.
func (s Shape) Describe() map[string]any {
	out := make(map[string]any, len(s))
	for name, typ := range s {
		if nested, ok := ShapeOf(typ); ok {
			out[name] = nested.Describe()
			continue
		}
		out[name] = typ.Name()
	}
	return out
}

// ParseType converts a type string to a Type.
// Supports "string", "int", "float", "bool", "duration", "url", "email",
// "uuid", "hostname_port", "any", "void", "enum(a|b)", "[T]" and "T?".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if inner, ok := strings.CutSuffix(typeStr, "?"); ok {
		t, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}

	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elem, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	if list, ok := strings.CutPrefix(typeStr, "enum("); ok {
		list, ok = strings.CutSuffix(list, ")")
		if !ok || list == "" {
			return nil, fmt.Errorf("malformed enum: %s", typeStr)
		}
		return Enum(strings.Split(list, "|")...), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "duration":
		return Duration(), nil
	case "url":
		return URL(), nil
	case "email", "uuid", "hostname_port", "ip":
		return Format(typeStr), nil
	case "any":
		return Any(), nil
	case "void":
		return Void(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Shape.
// Example: {"api_key": "string", "retries": "int"}
func ParseTypeMap(typeMap map[string]string) (Shape, error) {
	result := make(Shape, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// parseTypeTree is ParseTypeMap for nested descriptions, where a nested map
// becomes an Object.
func parseTypeTree(tree map[string]any) (Shape, error) {
	result := make(Shape, len(tree))
	for key, node := range tree {
		switch v := node.(type) {
		case string:
			t, err := ParseType(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			result[key] = t
		case map[string]any:
			nested, err := parseTypeTree(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			result[key] = Object(nested)
		default:
			return nil, fmt.Errorf("field %s: expected type string or object, got %T", key, node)
		}
	}
	return result, nil
}
