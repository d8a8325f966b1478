package di

import (
	"context"
	"slices"

	"github.com/kbukum/scod/schema"
)

// Factory builds a component instance from its resolved dependencies and
// its validated configuration slice.
type Factory[T any] func(ctx context.Context, deps Deps, config schema.Values) (T, error)

// ComponentOption configures a component definition.
type ComponentOption interface {
	applyComponent(*componentSpec)
}

type componentSpec struct {
	deps  []Dependency
	shape schema.Shape
}

type componentOptionFunc func(*componentSpec)

func (f componentOptionFunc) applyComponent(c *componentSpec) { f(c) }

// Configure sets the component's configuration shape.
func Configure(shape schema.Shape) ComponentOption {
	return componentOptionFunc(func(c *componentSpec) {
		c.shape = shape
	})
}

// Component is an immutable component definition producing a T.
type Component[T any] struct {
	name    string
	deps    []Dependency
	shape   schema.Shape
	factory Factory[T]
}

// Define declares a component. Without options it has no dependencies and
// an empty configuration shape.
func Define[T any](name string, factory Factory[T], opts ...ComponentOption) *Component[T] {
	spec := componentSpec{shape: schema.Shape{}}
	for _, opt := range opts {
		opt.applyComponent(&spec)
	}
	if spec.shape == nil {
		spec.shape = schema.Shape{}
	}
	return &Component[T]{
		name:    name,
		deps:    spec.deps,
		shape:   spec.shape,
		factory: factory,
	}
}

// Name returns the component name.
func (c *Component[T]) Name() string { return c.name }

// Dependencies returns the declared dependencies in declaration order.
func (c *Component[T]) Dependencies() []Dependency { return slices.Clone(c.deps) }

// Configuration returns the configuration shape.
func (c *Component[T]) Configuration() schema.Shape { return c.shape }

// Construct calls the factory directly, bypassing resolution.
func (c *Component[T]) Construct(ctx context.Context, deps Deps, config schema.Values) (any, error) {
	return c.factory(ctx, deps, config)
}

// Resolve builds the component and its dependencies from config. It uses a
// fresh Session unless WithResolver is given.
func (c *Component[T]) Resolve(ctx context.Context, config map[string]any, opts ...ResolveOption) (T, error) {
	o := newResolveOptions(opts)
	v, err := o.resolver().Resolve(ctx, c, config)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](c.name, v)
}
