package di

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/logger"
	"github.com/kbukum/scod/observability"
	"github.com/kbukum/scod/schema"
)

// Handler serves one invocation of an operation.
type Handler[O any] func(ctx context.Context, deps Deps, input schema.Values) (O, error)

// Func is a resolved, typed operation.
type Func[O any] func(ctx context.Context, input map[string]any) (O, error)

// Callable is a resolved operation with its output type erased.
type Callable func(ctx context.Context, input map[string]any) (any, error)

// Op is the untyped view of an operation used by Application.
type Op interface {
	Dependencies() []Dependency
	InputShape() schema.Shape
	OutputType() schema.Type
	Bind(ctx context.Context, config map[string]any, opts ...ResolveOption) (Callable, error)
}

// OperationOption configures an operation definition.
type OperationOption interface {
	applyOperation(*operationSpec)
}

type operationSpec struct {
	deps   []Dependency
	input  schema.Shape
	output schema.Type
}

type operationOptionFunc func(*operationSpec)

func (f operationOptionFunc) applyOperation(c *operationSpec) { f(c) }

// Input sets the input shape. Inputs are parsed strictly.
func Input(shape schema.Shape) OperationOption {
	return operationOptionFunc(func(c *operationSpec) {
		c.input = shape
	})
}

// Output sets the output type. The default accepts only no value.
func Output(t schema.Type) OperationOption {
	return operationOptionFunc(func(c *operationSpec) {
		c.output = t
	})
}

// Operation is an immutable operation definition returning an O.
type Operation[O any] struct {
	deps    []Dependency
	input   schema.Shape
	output  schema.Type
	handler Handler[O]
}

// NewOperation declares an operation. Without options it has no
// dependencies, an empty input shape and a void output.
func NewOperation[O any](handler Handler[O], opts ...OperationOption) *Operation[O] {
	spec := operationSpec{}
	for _, opt := range opts {
		opt.applyOperation(&spec)
	}
	if spec.input == nil {
		spec.input = schema.Shape{}
	}
	if spec.output == nil {
		spec.output = schema.Void()
	}
	return &Operation[O]{
		deps:    spec.deps,
		input:   spec.input,
		output:  spec.output,
		handler: handler,
	}
}

// Dependencies returns the declared dependencies in declaration order.
func (op *Operation[O]) Dependencies() []Dependency { return slices.Clone(op.deps) }

// InputShape returns the input shape.
func (op *Operation[O]) InputShape() schema.Shape { return op.input }

// OutputType returns the output type.
func (op *Operation[O]) OutputType() schema.Type { return op.output }

// Resolve resolves every dependency once and returns a function that
// validates input, runs the handler and validates its output per call.
func (op *Operation[O]) Resolve(ctx context.Context, config map[string]any, opts ...ResolveOption) (Func[O], error) {
	o := newResolveOptions(opts)
	r := o.resolver()

	deps := make(Deps, len(op.deps))
	for _, d := range op.deps {
		v, err := r.Resolve(ctx, d.Node, config)
		if err != nil {
			return nil, err
		}
		deps[d.Role] = v
	}

	inv := invoker[O]{op: op, deps: deps, name: o.operation, log: logger.Get("di")}
	if s, ok := r.(*Session); ok {
		inv.metrics = s.metrics
		inv.log = s.log
	}
	return inv.call, nil
}

// Bind is Resolve with the output type erased.
func (op *Operation[O]) Bind(ctx context.Context, config map[string]any, opts ...ResolveOption) (Callable, error) {
	fn, err := op.Resolve(ctx, config, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, input map[string]any) (any, error) {
		return fn(ctx, input)
	}, nil
}

type invoker[O any] struct {
	op      *Operation[O]
	deps    Deps
	name    string
	log     *logger.Logger
	metrics *observability.Metrics
}

func (inv invoker[O]) call(ctx context.Context, input map[string]any) (_ O, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanInvoke, trace.WithAttributes(
		attribute.String(observability.AttrOperation, inv.name),
	))
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			if appErr, ok := errors.AsAppError(err); ok {
				inv.metrics.RecordError(ctx, string(appErr.Code), inv.name)
				observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(appErr.Code))
				observability.SetSpanAttribute(ctx, observability.AttrPhase, string(appErr.Phase()))
			}
			inv.log.Warn("operation failed", logger.ErrorFields(inv.name, err))
		}
		inv.metrics.RecordInvocation(ctx, inv.name, status, time.Since(start))
		observability.EndSpan(span, err)
	}()

	return inv.op.invoke(ctx, inv.deps, input, inv.name)
}

func (op *Operation[O]) invoke(ctx context.Context, deps Deps, input map[string]any, name string) (O, error) {
	var zero O

	in, err := schema.Parse(op.input, input, schema.Strict)
	if err != nil {
		return zero, errors.InvalidInput(name, err).WithDetail("fields", fieldIssues(err))
	}

	out, err := op.handler(ctx, deps, in)
	if err != nil {
		return zero, errors.HandlerFailed(name, err)
	}

	parsed, err := op.output.Parse(out)
	if err != nil {
		return zero, errors.OutputInvalid(name, err).WithDetail("fields", fieldIssues(err))
	}
	if v, ok := parsed.(O); ok {
		return v, nil
	}
	return out, nil
}
