package schema

import (
	"strings"
	"testing"
	"time"
)

func TestParseStrict(t *testing.T) {
	shape := Shape{
		"url":     URL(),
		"retries": Default(Int(), 3),
		"timeout": Optional(Duration()),
	}

	got, err := Parse(shape, map[string]any{"url": "http://localhost"}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String("url") != "http://localhost" {
		t.Errorf("unexpected url %v", got["url"])
	}
	if got.Int("retries") != 3 {
		t.Errorf("expected default retries, got %v", got["retries"])
	}
	if got.Has("timeout") {
		t.Error("absent optional field should be left out")
	}
}

func TestParseStrictErrors(t *testing.T) {
	shape := Shape{"v": Int(), "name": String()}

	_, err := Parse(shape, map[string]any{"v": "x", "w": "stray"}, Strict)
	if err == nil {
		t.Fatal("expected error")
	}
	issues := Issues(err)
	want := []Issue{
		{Path: "name", Reason: "required"},
		{Path: "v"},
		{Path: "w", Reason: "unknown field"},
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), issues)
	}
	for i, w := range want {
		if issues[i].Path != w.Path {
			t.Errorf("issue %d path = %q, want %q", i, issues[i].Path, w.Path)
		}
		if w.Reason != "" && issues[i].Reason != w.Reason {
			t.Errorf("issue %d reason = %q, want %q", i, issues[i].Reason, w.Reason)
		}
	}
	if !strings.Contains(err.Error(), "3 validation errors") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestParsePartial(t *testing.T) {
	shape := Shape{"v": Int(), "name": String()}

	got, err := Parse(shape, map[string]any{"v": 1}, Partial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int("v") != 1 || got.Has("name") {
		t.Errorf("unexpected values %v", got)
	}

	if _, err := Parse(shape, map[string]any{"v": "x"}, Partial); err == nil {
		t.Error("partial mode must still type-check supplied fields")
	}
	if _, err := Parse(shape, map[string]any{"other": 1}, Partial); err == nil {
		t.Error("partial mode must still reject unknown fields")
	}
}

func TestParseEmptyShape(t *testing.T) {
	for _, in := range []any{nil, map[string]any{}} {
		got, err := Parse(Shape{}, in, Strict)
		if err != nil || len(got) != 0 {
			t.Errorf("Parse(empty, %v) = %v, %v", in, got, err)
		}
	}
	if _, err := Parse(Shape{}, map[string]any{"x": 1}, Strict); err == nil {
		t.Error("empty shape must reject unknown keys")
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	_, err := Parse(Shape{}, "text", Strict)
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Path != "" {
		t.Errorf("expected a single root issue, got %v", issues)
	}
}

func TestParseNestedObject(t *testing.T) {
	shape := Shape{
		"db": Object(Shape{"host": String(), "port": Int()}),
		"tags": Slice(String()),
	}
	_, err := Parse(shape, map[string]any{
		"db":   map[string]any{"host": "x", "port": "p", "user": "u"},
		"tags": []any{"a", 1},
	}, Strict)

	paths := err.(*ValidationError).Paths()
	want := []string{"db.port", "db.user", "tags[1]"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestObjectAbsence(t *testing.T) {
	shape := Shape{
		"empty":    Object(Shape{}),
		"defaults": Object(Shape{"level": Default(String(), "info")}),
		"required": Object(Shape{"url": URL()}),
	}
	_, err := Parse(shape, nil, Strict)
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Path != "required" {
		t.Fatalf("only the object with a required field should fail, got %v", issues)
	}

	got, err := Parse(shape, map[string]any{"required": map[string]any{"url": "http://x"}}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Object("defaults").String("level") != "info" {
		t.Errorf("expected nested default, got %v", got["defaults"])
	}
}

func TestParseAcceptsStringMaps(t *testing.T) {
	shape := Shape{"port": Int(), "debug": Bool()}
	got, err := Parse(shape, map[string]string{"port": "8080", "debug": "true"}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int("port") != 8080 || !got.Bool("debug") {
		t.Errorf("unexpected values %v", got)
	}
}

func TestValuesDecode(t *testing.T) {
	v := Values{"host": "db:5432", "size": 2, "timeout": 3 * time.Second}
	var cfg poolConfig
	if err := v.Decode(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "db:5432" || cfg.Size != 2 || cfg.Timeout != 3*time.Second {
		t.Errorf("unexpected decode %+v", cfg)
	}
	if v.Duration("timeout") != 3*time.Second || v.String("missing") != "" {
		t.Error("unexpected getter results")
	}
}

func TestParseTypeMap(t *testing.T) {
	shape, err := ParseTypeMap(map[string]string{
		"name":    "string",
		"tags":    "[string]",
		"timeout": "duration?",
		"level":   "enum(debug|info)",
		"addr":    "hostname_port",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := map[string]string{}
	for k, v := range shape {
		names[k] = v.Name()
	}
	want := map[string]string{
		"name": "string", "tags": "[string]", "timeout": "duration?",
		"level": "enum(debug|info)", "addr": "hostname_port",
	}
	for k, w := range want {
		if names[k] != w {
			t.Errorf("%s: got %s, want %s", k, names[k], w)
		}
	}

	if _, err := ParseTypeMap(map[string]string{"x": "complex"}); err == nil {
		t.Error("expected unsupported type error")
	}
}
