package di

import "context"

// Resolver produces the instance for a component. *Session is the standard
// implementation; tests and callers may substitute their own.
type Resolver interface {
	Resolve(ctx context.Context, node Node, config map[string]any) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, node Node, config map[string]any) (any, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, node Node, config map[string]any) (any, error) {
	return f(ctx, node, config)
}

// ResolveOption configures a Resolve, Lazy or Bind call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	r         Resolver
	operation string
}

// WithResolver resolves through r instead of a fresh Session.
func WithResolver(r Resolver) ResolveOption {
	return func(o *resolveOptions) {
		o.r = r
	}
}

// WithOperationName names the operation in errors, logs and metrics.
// Applications set it to the operation key.
func WithOperationName(name string) ResolveOption {
	return func(o *resolveOptions) {
		o.operation = name
	}
}

func newResolveOptions(opts []ResolveOption) resolveOptions {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolver returns the configured resolver or a new Session.
func (o resolveOptions) resolver() Resolver {
	if o.r != nil {
		return o.r
	}
	return NewSession()
}
