package di

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/schema"
)

// fixture: get -> repo -> db, put -> {repo, cache}, ping -> nothing.
type fixture struct {
	app         *Application
	dbBuilds    atomic.Int32
	cacheBuilds atomic.Int32
}

func newFixture() *fixture {
	f := &fixture{}
	db := Define("db", func(_ context.Context, _ Deps, cfg schema.Values) (*resource, error) {
		f.dbBuilds.Add(1)
		return &resource{name: cfg.String("dsn")}, nil
	}, Configure(schema.Shape{"dsn": schema.String()}))
	repo := Define("repo", func(_ context.Context, deps Deps, _ schema.Values) (*pair, error) {
		return &pair{a: MustGet[*resource](deps, "db")}, nil
	}, DependsOn("db", db))
	cache := Define("cache", func(context.Context, Deps, schema.Values) (*resource, error) {
		f.cacheBuilds.Add(1)
		return &resource{name: "cache"}, nil
	})

	get := NewOperation(func(_ context.Context, deps Deps, in schema.Values) (any, error) {
		return MustGet[*pair](deps, "repo").a.name + "/" + in.String("id"), nil
	}, DependsOn("repo", repo), Input(schema.Shape{"id": schema.String()}), Output(schema.String()))
	put := NewOperation(func(context.Context, Deps, schema.Values) (struct{}, error) {
		return struct{}{}, nil
	}, DependsOn("repo", repo), DependsOn("cache", cache))
	ping := NewOperation(func(context.Context, Deps, schema.Values) (any, error) {
		return "pong", nil
	}, Output(schema.String()))

	f.app = NewApplication(map[string]Op{"get": get, "put": put, "ping": ping})
	return f
}

var validConfig = map[string]any{"db": map[string]any{"dsn": "mem://"}}

func TestComponentsAndConfigShape(t *testing.T) {
	app := newFixture().app

	var names []string
	for _, n := range app.Components() {
		names = append(names, n.Name())
	}
	if !slices.Equal(names, []string{"db", "repo", "cache"}) {
		t.Errorf("unexpected component order %v", names)
	}

	shape := app.ConfigShape()
	if !slices.Equal(shape.Keys(), []string{"cache", "db", "repo"}) {
		t.Errorf("unexpected shape keys %v", shape.Keys())
	}
	dbShape, ok := schema.ShapeOf(shape["db"])
	if !ok || dbShape["dsn"] == nil {
		t.Errorf("expected db's own shape, got %v", shape.Describe())
	}
	if !slices.Equal(app.Requires("put"), []string{"db", "repo", "cache"}) {
		t.Errorf("unexpected requirements %v", app.Requires("put"))
	}
	if app.Requires("missing") != nil {
		t.Error("expected nil for an unknown operation")
	}
}

func TestEagerResolve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ops, err := f.app.Resolve(ctx, validConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.dbBuilds.Load() != 1 || f.cacheBuilds.Load() != 1 {
		t.Errorf("expected every component built up front, got db=%d cache=%d", f.dbBuilds.Load(), f.cacheBuilds.Load())
	}
	if !slices.Equal(ops.Keys(), []string{"get", "ping", "put"}) {
		t.Errorf("unexpected keys %v", ops.Keys())
	}

	got, err := Call[string](ctx, ops, "get", map[string]any{"id": "7"})
	if err != nil || got != "mem:///7" {
		t.Errorf("got %q, %v", got, err)
	}
	if f.dbBuilds.Load() != 1 {
		t.Errorf("calls should not construct again, db=%d", f.dbBuilds.Load())
	}
}

func TestEagerResolveRejectsConfig(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		path   string
	}{
		{"missing slice", nil, "db"},
		{"missing field", map[string]any{"db": map[string]any{}}, "db.dsn"},
		{"unknown component", map[string]any{"db": map[string]any{"dsn": "x"}, "queue": map[string]any{}}, "queue"},
		{"field of another component", map[string]any{"db": map[string]any{"dsn": "x"}, "cache": map[string]any{"dsn": "x"}}, "cache.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.app.Resolve(context.Background(), tt.config)

			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeConfigInvalid {
				t.Fatalf("expected CONFIG_INVALID, got %v", err)
			}
			issues := appErr.Details["fields"].([]schema.Issue)
			if len(issues) != 1 || issues[0].Path != tt.path {
				t.Errorf("expected an issue at %s, got %v", tt.path, issues)
			}
			if f.dbBuilds.Load() != 0 {
				t.Error("nothing should be constructed when validation fails")
			}
		})
	}
}

func TestLazyResolve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ops, err := f.app.Lazy(ctx, validConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.dbBuilds.Load() != 0 {
		t.Fatalf("lazy must not construct up front, db=%d", f.dbBuilds.Load())
	}

	for range 2 {
		got, err := Call[string](ctx, ops, "get", map[string]any{"id": "1"})
		if err != nil || got != "mem:///1" {
			t.Fatalf("got %q, %v", got, err)
		}
		if f.dbBuilds.Load() != 1 {
			t.Errorf("expected exactly one construction, got %d", f.dbBuilds.Load())
		}
	}
	if f.cacheBuilds.Load() != 0 {
		t.Error("components of operations never called should not be built")
	}
}

func TestLazyToleratesMissingConfig(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ops, err := f.app.Lazy(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, err := ops.Invoke(ctx, "ping", nil); err != nil || got != "pong" {
		t.Errorf("ping should work without config, got %v, %v", got, err)
	}

	_, err = ops.Invoke(ctx, "get", map[string]any{"id": "1"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeConfigInvalid || appErr.Component() != "db" {
		t.Errorf("expected CONFIG_INVALID for db on first use, got %v", err)
	}
}

func TestLazyRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
	}{
		{"wrong type", map[string]any{"db": map[string]any{"dsn": 5}}},
		{"incomplete slice", map[string]any{"db": map[string]any{}}},
		{"unknown component", map[string]any{"queue": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture().app.Lazy(context.Background(), tt.config)
			if !errors.HasCode(err, errors.ErrCodeConfigInvalid) {
				t.Errorf("expected CONFIG_INVALID, got %v", err)
			}
		})
	}
}

func TestApplicationSharedSession(t *testing.T) {
	f := newFixture()
	s := NewSession()

	if _, err := f.app.Resolve(context.Background(), validConfig, WithResolver(s)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Resolved(); !slices.Equal(got, []string{"db", "repo", "cache"}) {
		t.Errorf("unexpected resolution order %v", got)
	}

	if _, err := f.app.Resolve(context.Background(), validConfig, WithResolver(s)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.dbBuilds.Load() != 1 {
		t.Errorf("a shared session should be reused, db=%d", f.dbBuilds.Load())
	}
}

func TestApplicationStubResolver(t *testing.T) {
	f := newFixture()
	stub := ResolverFunc(func(_ context.Context, node Node, _ map[string]any) (any, error) {
		if node.Name() == "repo" {
			return &pair{a: &resource{name: "stub"}}, nil
		}
		return &resource{name: node.Name()}, nil
	})

	ops, err := f.app.Lazy(context.Background(), nil, WithResolver(stub))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Call[string](context.Background(), ops, "get", map[string]any{"id": "9"})
	if err != nil || got != "stub/9" {
		t.Errorf("got %q, %v", got, err)
	}
	if f.dbBuilds.Load() != 0 {
		t.Error("the stub should replace construction")
	}
}

func TestOperationsInvoke(t *testing.T) {
	ops, err := newFixture().app.Resolve(context.Background(), validConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ops.Invoke(context.Background(), "nope", nil); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := Call[int](context.Background(), ops, "ping", nil); !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR for a type mismatch, got %v", err)
	}
	if _, err := Call[struct{}](context.Background(), ops, "put", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	infos := newFixture().app.Describe()
	if len(infos) != 3 || infos[0].Key != "get" {
		t.Fatalf("unexpected descriptions %+v", infos)
	}
	get := infos[0]
	if get.Input["id"] != "string" || get.Output != "string" {
		t.Errorf("unexpected get description %+v", get)
	}
	if !slices.Equal(get.Components, []string{"db", "repo"}) {
		t.Errorf("unexpected components %v", get.Components)
	}
	if infos[2].Output != "void" {
		t.Errorf("expected put to be void, got %s", infos[2].Output)
	}
}
