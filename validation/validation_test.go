package validation

import (
	"testing"
)

type clientConfig struct {
	URL     string `json:"url" validate:"required,url"`
	Retries int    `json:"retries" validate:"min=0,max=10"`
	Owner   owner  `json:"owner"`
}

type owner struct {
	Email string `json:"email" validate:"required,email"`
}

func TestStructValid(t *testing.T) {
	issues, err := Struct(clientConfig{URL: "http://localhost:8080", Retries: 3, Owner: owner{Email: "a@b.co"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestStructInvalid(t *testing.T) {
	issues, err := Struct(clientConfig{URL: "not a url", Retries: 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byField := map[string]FieldIssue{}
	for _, is := range issues {
		byField[is.Field] = is
	}
	if byField["url"].Tag != "url" {
		t.Errorf("expected url issue, got %v", issues)
	}
	if byField["retries"].Message != "must be at most 10" {
		t.Errorf("expected retries max issue, got %v", byField["retries"])
	}
	if byField["owner.email"].Message != "is required" {
		t.Errorf("expected nested owner.email issue, got %v", issues)
	}
}

func TestStructNonStruct(t *testing.T) {
	if _, err := Struct(42); err == nil {
		t.Error("expected an error for a non-struct value")
	}
}

func TestVar(t *testing.T) {
	tests := []struct {
		name  string
		value any
		tag   string
		ok    bool
		msg   string
	}{
		{"valid url", "https://example.com/x", "url", true, ""},
		{"invalid url", "localhost", "url", false, "must be a valid URL"},
		{"valid host port", "localhost:8080", "hostname_port", true, ""},
		{"invalid email", "nope", "email", false, "must be a valid email address"},
		{"unknown tag message", "abc", "numeric", false, "failed numeric validation"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := Var(tc.value, tc.tag)
			if ok != tc.ok {
				t.Fatalf("Var(%v, %q) ok = %v, want %v", tc.value, tc.tag, ok, tc.ok)
			}
			if msg != tc.msg {
				t.Errorf("message = %q, want %q", msg, tc.msg)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxRetries"); got != "max_retries" {
		t.Errorf("expected max_retries, got %q", got)
	}
}
