package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue is a single field validation failure.
type Issue struct {
	// Path is the dotted field path, e.g. "db.port" or "tags[2]".
	// It is empty when the value as a whole is rejected.
	Path string `json:"path"`
	// Reason is a human-readable reason for the failure.
	Reason string `json:"reason"`
	// Value is the offending value, nil for missing fields.
	Value any `json:"value,omitempty"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Reason
	}
	return fmt.Sprintf("field %q: %s", i.Path, i.Reason)
}

// ValidationError holds every issue found while parsing one value.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Issues))
	for _, is := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(is.String())
	}
	return b.String()
}

// Paths returns the paths of all issues.
func (e *ValidationError) Paths() []string {
	out := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		out[i] = is.Path
	}
	return out
}

// Issues returns the issues carried by err if it is, or wraps, a
// *ValidationError. Otherwise it returns nil.
func Issues(err error) []Issue {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

// issueList accumulates issues under a path prefix.
type issueList []Issue

func (l *issueList) add(path, reason string, value any) {
	*l = append(*l, Issue{Path: path, Reason: reason, Value: value})
}

// addErr records err under prefix, flattening nested validation errors.
func (l *issueList) addErr(prefix string, value any, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, is := range ve.Issues {
			l.add(joinPath(prefix, is.Path), is.Reason, is.Value)
		}
		return
	}
	l.add(prefix, err.Error(), value)
}

func (l issueList) err() error {
	if len(l) == 0 {
		return nil
	}
	sort.SliceStable(l, func(i, j int) bool { return l[i].Path < l[j].Path })
	return &ValidationError{Issues: l}
}

func joinPath(prefix, path string) string {
	switch {
	case path == "":
		return prefix
	case prefix == "":
		return path
	case strings.HasPrefix(path, "["):
		return prefix + path
	default:
		return prefix + "." + path
	}
}
