package schema

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/scod/validation"
)

type structType[T any] struct{}

// Struct creates a type that decodes a map into T using its json tags and
// then checks T's `validate` tags. Unknown keys are rejected. A value that
// already is a T or *T is only validated.
func Struct[T any]() Type { return structType[T]{} }

func (structType[T]) Name() string {
	return reflect.TypeFor[T]().Name()
}

func (structType[T]) Parse(value any) (any, error) {
	var out T
	switch v := value.(type) {
	case T:
		out = v
	case *T:
		if v == nil {
			return nil, fmt.Errorf("expected %s, got nil", reflect.TypeFor[T]().Name())
		}
		out = *v
	default:
		if err := decode(value, &out, true); err != nil {
			return nil, err
		}
	}

	issues, err := validation.Struct(out)
	if err != nil {
		return nil, err
	}
	var list issueList
	for _, is := range issues {
		list.add(is.Field, is.Message, nil)
	}
	if err := list.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decode maps input onto out via mapstructure, honouring json tags and
// converting duration strings.
func decode(input, out any, errorUnused bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      errorUnused,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
