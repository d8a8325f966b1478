package di

import (
	"context"
	"fmt"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/schema"
)

// Node is the untyped view of a component used by resolvers.
// Name is the component's identity: two nodes with the same name are the
// same component to a Session.
type Node interface {
	Name() string
	Dependencies() []Dependency
	Configuration() schema.Shape
	Construct(ctx context.Context, deps Deps, config schema.Values) (any, error)
}

// Dependency binds a role name to the component filling it.
type Dependency struct {
	Role string
	Node Node
}

// Deps holds resolved dependencies by role name.
type Deps map[string]any

// Get returns the dependency registered under role as a T.
func Get[T any](deps Deps, role string) (T, error) {
	var zero T
	v, ok := deps[role]
	if !ok {
		return zero, errors.NotFound("dependency", role)
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("di: dependency %s is %T, expected %T", role, v, zero))
	}
	return t, nil
}

// MustGet is Get that panics on a missing or mistyped dependency. Factories
// and handlers use it for roles they declared themselves.
func MustGet[T any](deps Deps, role string) T {
	t, err := Get[T](deps, role)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return t
}

// withDependency sets role to node, keeping declaration order. Re-declaring
// a role replaces it in place.
func withDependency(list []Dependency, dep Dependency) []Dependency {
	for i, d := range list {
		if d.Role == dep.Role {
			list[i] = dep
			return list
		}
	}
	return append(list, dep)
}

// DependencyOption declares a dependency on a component or an operation.
type DependencyOption struct {
	dep Dependency
}

// DependsOn declares that role is filled by node.
func DependsOn(role string, node Node) DependencyOption {
	return DependencyOption{dep: Dependency{Role: role, Node: node}}
}

func (o DependencyOption) applyComponent(c *componentSpec) {
	c.deps = withDependency(c.deps, o.dep)
}

func (o DependencyOption) applyOperation(c *operationSpec) {
	c.deps = withDependency(c.deps, o.dep)
}

// cast converts a resolved value to T. A nil value yields the zero T.
func cast[T any](name string, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("di: component %s is %T, expected %T", name, v, zero))
	}
	return t, nil
}

// fieldIssues returns the schema issues behind err, or a single issue
// holding its message when err is not a validation error.
func fieldIssues(err error) []schema.Issue {
	if issues := schema.Issues(err); issues != nil {
		return issues
	}
	return []schema.Issue{{Reason: err.Error()}}
}
