package di

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/schema"
)

// Application aggregates operations under keys and resolves them together.
type Application struct {
	ops map[string]Op
}

// NewApplication creates an application from operation key -> operation.
func NewApplication(ops map[string]Op) *Application {
	return &Application{ops: maps.Clone(ops)}
}

// Keys returns the operation keys in sorted order.
func (a *Application) Keys() []string {
	return slices.Sorted(maps.Keys(a.ops))
}

// Operation returns the operation registered under key.
func (a *Application) Operation(key string) (Op, bool) {
	op, ok := a.ops[key]
	return op, ok
}

// Components returns the transitive dependency closure of every operation,
// dependencies before dependents, each name once.
func (a *Application) Components() []Node {
	var nodes []Node
	seen := map[string]bool{}
	for _, key := range a.Keys() {
		nodes = collect(a.ops[key].Dependencies(), seen, nodes)
	}
	return nodes
}

// Requires returns the component names operation key depends on, directly
// or transitively.
func (a *Application) Requires(key string) []string {
	op, ok := a.ops[key]
	if !ok {
		return nil
	}
	nodes := collect(op.Dependencies(), map[string]bool{}, nil)
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}

func collect(deps []Dependency, seen map[string]bool, out []Node) []Node {
	for _, d := range deps {
		name := d.Node.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = collect(d.Node.Dependencies(), seen, out)
		out = append(out, d.Node)
	}
	return out
}

// ConfigShape is the aggregate configuration shape: component name -> that
// component's own shape as a strict object.
func (a *Application) ConfigShape() schema.Shape {
	shape := schema.Shape{}
	for _, n := range a.Components() {
		shape[n.Name()] = schema.Object(n.Configuration())
	}
	return shape
}

// Resolve validates config against the aggregate shape, then constructs
// every operation's dependencies up front through one shared resolver.
func (a *Application) Resolve(ctx context.Context, config map[string]any, opts ...ResolveOption) (Operations, error) {
	if _, err := schema.Parse(a.ConfigShape(), config, schema.Strict); err != nil {
		return nil, errors.ConfigInvalid("", err).WithDetail("fields", fieldIssues(err))
	}

	r := newResolveOptions(opts).resolver()
	ops := make(Operations, len(a.ops))
	for _, key := range a.Keys() {
		call, err := a.ops[key].Bind(ctx, config, WithResolver(r), WithOperationName(key))
		if err != nil {
			return nil, err
		}
		ops[key] = call
	}
	return ops, nil
}

// Lazy validates config against the aggregate shape in partial mode and
// returns operations that resolve their dependencies when called. All calls
// share one resolver, so components are constructed once across calls.
func (a *Application) Lazy(ctx context.Context, config map[string]any, opts ...ResolveOption) (Operations, error) {
	if _, err := schema.Parse(a.ConfigShape(), config, schema.Partial); err != nil {
		return nil, errors.ConfigInvalid("", err).WithDetail("fields", fieldIssues(err))
	}

	r := newResolveOptions(opts).resolver()
	ops := make(Operations, len(a.ops))
	for key, op := range a.ops {
		ops[key] = func(ctx context.Context, input map[string]any) (any, error) {
			call, err := op.Bind(ctx, config, WithResolver(r), WithOperationName(key))
			if err != nil {
				return nil, err
			}
			return call(ctx, input)
		}
	}
	return ops, nil
}

// OperationInfo describes one operation of an application.
type OperationInfo struct {
	Key        string         `json:"key"`
	Input      map[string]any `json:"input"`
	Output     string         `json:"output"`
	Components []string       `json:"components"`
}

// Describe lists every operation with its input shape, output type and
// required components.
func (a *Application) Describe() []OperationInfo {
	out := make([]OperationInfo, 0, len(a.ops))
	for _, key := range a.Keys() {
		op := a.ops[key]
		out = append(out, OperationInfo{
			Key:        key,
			Input:      op.InputShape().Describe(),
			Output:     op.OutputType().Name(),
			Components: a.Requires(key),
		})
	}
	return out
}

// Operations holds resolved operations by key.
type Operations map[string]Callable

// Keys returns the operation keys in sorted order.
func (o Operations) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// Invoke calls the operation registered under key.
func (o Operations) Invoke(ctx context.Context, key string, input map[string]any) (any, error) {
	call, ok := o[key]
	if !ok {
		return nil, errors.NotFound("operation", key)
	}
	return call(ctx, input)
}

// Call invokes operation key and converts its result to O.
func Call[O any](ctx context.Context, ops Operations, key string, input map[string]any) (O, error) {
	var zero O
	v, err := ops.Invoke(ctx, key, input)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(O)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("di: operation %s returned %T, expected %T", key, v, zero))
	}
	return out, nil
}
