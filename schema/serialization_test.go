package schema

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestShapeYAML(t *testing.T) {
	src := []byte(`
url: url
retries: int
tags: "[string]"
db:
  host: string
  port: int?
`)
	shape, err := LoadShape(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nested, ok := ShapeOf(shape["db"])
	if !ok {
		t.Fatalf("expected db to be an object, got %s", shape["db"].Name())
	}
	if nested["port"].Name() != "int?" {
		t.Errorf("unexpected nested type %s", nested["port"].Name())
	}

	out, err := yaml.Marshal(shape)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := LoadShape(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again["tags"].Name() != "[string]" || len(again) != 4 {
		t.Errorf("shape did not survive YAML: %v", again.Describe())
	}
}

func TestShapeYAMLErrors(t *testing.T) {
	if _, err := LoadShape([]byte("x: nope")); err == nil {
		t.Error("expected unsupported type error")
	}
	if _, err := LoadShape([]byte("x: 3")); err == nil {
		t.Error("expected error for a non-string type")
	}
}
