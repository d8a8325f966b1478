package di

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/logger"
	"github.com/kbukum/scod/observability"
	"github.com/kbukum/scod/schema"
)

// Session is a resolution context: it memoizes component instances by name
// for its lifetime. Concurrent resolvers of the same name wait for a single
// construction. A failed construction is evicted, so a later Resolve retries
// it.
type Session struct {
	id       string
	log      *logger.Logger
	metrics  *observability.Metrics
	parallel bool

	mu       sync.Mutex
	entries  map[string]*entry
	resolved []string
}

// entry is a single-assignment slot; done is closed once value/err are set.
type entry struct {
	done  chan struct{}
	value any
	err   error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. Defaults to logger.Get("di").
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// WithMetrics records construction and invocation metrics.
func WithMetrics(m *observability.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithParallelDependencies resolves sibling dependencies concurrently. Each
// component still validates its configuration after all of its dependencies
// are built and before its own factory runs.
func WithParallelDependencies() SessionOption {
	return func(s *Session) {
		s.parallel = true
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:      uuid.NewString(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("di")
	}
	s.log = s.log.WithFields(logger.Fields(logger.FieldSessionID, s.id))
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Provide seeds the session with an instance for name. It fails if name is
// already resolved or being resolved.
func (s *Session) Provide(name string, instance any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("di: component %s already present in session %s", name, s.id)
	}
	e := &entry{done: make(chan struct{}), value: instance}
	close(e.done)
	s.entries[name] = e
	s.resolved = append(s.resolved, name)
	return nil
}

// Lookup returns the instance for name if it has been constructed.
func (s *Session) Lookup(name string) (any, bool) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.done:
		return e.value, e.err == nil
	default:
		return nil, false
	}
}

// Resolved lists the names held by the session in completion order.
func (s *Session) Resolved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.resolved)
}

// Resolve returns the instance for node, constructing it and its
// dependencies on first use.
func (s *Session) Resolve(ctx context.Context, node Node, config map[string]any) (any, error) {
	name := node.Name()
	path := s.pathFrom(ctx)
	if i := slices.Index(path, name); i >= 0 {
		cycle := append(slices.Clone(path[i:]), name)
		return nil, s.fail(ctx, name, errors.CyclicDependency(cycle))
	}

	// Held or in-flight names already passed the graph walk.
	s.mu.Lock()
	_, held := s.entries[name]
	s.mu.Unlock()
	if !held && len(path) == 0 {
		if cycle := findCycle(node); cycle != nil {
			return nil, s.fail(ctx, name, errors.CyclicDependency(cycle))
		}
	}

	s.mu.Lock()
	if e, ok := s.entries[name]; ok {
		s.mu.Unlock()
		select {
		case <-e.done:
			return e.value, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{done: make(chan struct{})}
	s.entries[name] = e
	s.mu.Unlock()

	e.value, e.err = s.build(s.withPath(ctx, append(slices.Clone(path), name)), node, config)

	s.mu.Lock()
	if e.err != nil {
		if s.entries[name] == e {
			delete(s.entries, name)
		}
	} else {
		s.resolved = append(s.resolved, name)
	}
	s.mu.Unlock()
	close(e.done)

	return e.value, e.err
}

// build resolves dependencies, validates the configuration slice and runs
// the factory, in that order.
func (s *Session) build(ctx context.Context, node Node, config map[string]any) (_ any, err error) {
	name := node.Name()
	ctx, span := observability.StartSpan(ctx, observability.SpanResolve, trace.WithAttributes(
		attribute.String(observability.AttrComponent, name),
		attribute.String(observability.AttrSessionID, s.id),
	))
	defer func() { observability.EndSpan(span, err) }()

	deps, err := s.resolveDependencies(ctx, node, config)
	if err != nil {
		return nil, err
	}

	values, err := schema.Parse(node.Configuration(), config[name], schema.Strict)
	if err != nil {
		return nil, s.fail(ctx, name, errors.ConfigInvalid(name, err).WithDetail("fields", fieldIssues(err)))
	}

	cctx, cspan := observability.StartSpan(ctx, observability.SpanConstruct, trace.WithAttributes(
		attribute.String(observability.AttrComponent, name),
	))
	start := time.Now()
	value, err := construct(cctx, node, deps, values)
	elapsed := time.Since(start)
	observability.EndSpan(cspan, err)

	if err != nil {
		s.metrics.RecordConstruction(ctx, name, "error", elapsed)
		return nil, s.fail(ctx, name, errors.ConstructionFailed(name, err))
	}
	s.metrics.RecordConstruction(ctx, name, "ok", elapsed)
	s.log.Debug("component constructed", logger.Fields(
		logger.FieldComponent, name,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return value, nil
}

// construct runs the factory, reporting a panic as an error so the entry
// is still released.
func construct(ctx context.Context, node Node, deps Deps, values schema.Values) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return node.Construct(ctx, deps, values)
}

func (s *Session) resolveDependencies(ctx context.Context, node Node, config map[string]any) (Deps, error) {
	list := node.Dependencies()
	deps := make(Deps, len(list))
	if !s.parallel || len(list) < 2 {
		for _, d := range list {
			v, err := s.Resolve(ctx, d.Node, config)
			if err != nil {
				return nil, err
			}
			deps[d.Role] = v
		}
		return deps, nil
	}

	values := make([]any, len(list))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range list {
		g.Go(func() error {
			v, err := s.Resolve(gctx, d.Node, config)
			values[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, d := range list {
		deps[d.Role] = values[i]
	}
	return deps, nil
}

// fail logs and counts err at the component where it originated.
func (s *Session) fail(ctx context.Context, name string, err *errors.AppError) error {
	s.metrics.RecordError(ctx, string(err.Code), name)
	observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(err.Code))
	s.log.Warn("component resolution failed", logger.Fields(
		logger.FieldComponent, name,
		logger.FieldPhase, string(err.Phase()),
		logger.FieldError, err.Error(),
	))
	return err
}

// pathKey scopes the in-progress path to one session, so a factory that
// resolves through another session starts a fresh path.
type pathKey struct{ s *Session }

func (s *Session) pathFrom(ctx context.Context) []string {
	path, _ := ctx.Value(pathKey{s}).([]string)
	return path
}

func (s *Session) withPath(ctx context.Context, path []string) context.Context {
	return context.WithValue(ctx, pathKey{s}, path)
}

// findCycle walks node's dependency graph by name and returns the first
// cycle found, e.g. [a b a], or nil.
func findCycle(node Node) []string {
	const (
		visiting = 1
		visited  = 2
	)
	state := map[string]int{}
	var stack []string

	var visit func(n Node) []string
	visit = func(n Node) []string {
		name := n.Name()
		switch state[name] {
		case visiting:
			i := slices.Index(stack, name)
			return append(slices.Clone(stack[i:]), name)
		case visited:
			return nil
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, d := range n.Dependencies() {
			if cycle := visit(d.Node); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		return nil
	}
	return visit(node)
}
