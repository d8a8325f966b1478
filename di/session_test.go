package di

import (
	"bytes"
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/scod/errors"
	"github.com/kbukum/scod/logger"
	"github.com/kbukum/scod/observability"
	"github.com/kbukum/scod/schema"
)

func TestCycleDetection(t *testing.T) {
	a := &fakeNode{name: "a"}
	b := &fakeNode{name: "b", deps: []Dependency{{Role: "a", Node: a}}}
	a.deps = []Dependency{{Role: "b", Node: b}}
	self := &fakeNode{name: "self"}
	self.deps = []Dependency{{Role: "me", Node: self}}
	root := &fakeNode{name: "root", deps: []Dependency{{Role: "a", Node: a}}}

	tests := []struct {
		name string
		node Node
		path []string
	}{
		{"two nodes", a, []string{"a", "b", "a"}},
		{"self", self, []string{"self", "self"}},
		{"below root", root, []string{"a", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession().Resolve(context.Background(), tt.node, nil)
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeCyclicDependency {
				t.Fatalf("expected CYCLIC_DEPENDENCY, got %v", err)
			}
			if path := appErr.Details["path"].([]string); !slices.Equal(path, tt.path) {
				t.Errorf("expected path %v, got %v", tt.path, path)
			}
		})
	}
}

func TestConcurrentResolveConstructsOnce(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	slow := Define("slow", func(context.Context, Deps, schema.Values) (*resource, error) {
		n.Add(1)
		<-release
		return &resource{name: "slow"}, nil
	})

	s := NewSession()
	const workers = 8
	results := make([]*resource, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = slow.Resolve(context.Background(), nil, WithResolver(s))
		}()
	}

	for n.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if n.Load() != 1 {
		t.Errorf("expected one construction, got %d", n.Load())
	}
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("worker %d received a different instance", i)
		}
	}
}

func TestWaitHonoursContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := Define("slow", func(context.Context, Deps, schema.Values) (int, error) {
		close(started)
		<-release
		return 1, nil
	})

	s := NewSession()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = slow.Resolve(context.Background(), nil, WithResolver(s))
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := slow.Resolve(ctx, nil, WithResolver(s)); !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	close(release)
	<-done
	if v, ok := s.Lookup("slow"); !ok || v != 1 {
		t.Errorf("expected the first resolve to complete, got %v", v)
	}
}

func TestParallelDependencies(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	rendezvous := func() error {
		barrier.Done()
		ch := make(chan struct{})
		go func() {
			barrier.Wait()
			close(ch)
		}()
		select {
		case <-ch:
			return nil
		case <-time.After(2 * time.Second):
			return stderrors.New("siblings were not resolved concurrently")
		}
	}
	side := func(name string) *Component[string] {
		return Define(name, func(context.Context, Deps, schema.Values) (string, error) {
			return name, rendezvous()
		})
	}
	root := Define("root", func(_ context.Context, deps Deps, _ schema.Values) (string, error) {
		return MustGet[string](deps, "l") + MustGet[string](deps, "r"), nil
	}, DependsOn("l", side("left")), DependsOn("r", side("right")))

	got, err := root.Resolve(context.Background(), nil, WithResolver(NewSession(WithParallelDependencies())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "leftright" {
		t.Errorf("expected leftright, got %s", got)
	}
}

func TestParallelDiamond(t *testing.T) {
	var aCount atomic.Int32
	a := leaf("a", &aCount)
	mid := func(name string) *Component[*pair] {
		return Define(name, func(_ context.Context, deps Deps, _ schema.Values) (*pair, error) {
			return &pair{a: MustGet[*resource](deps, "a")}, nil
		}, DependsOn("a", a))
	}
	d := Define("d", func(_ context.Context, deps Deps, _ schema.Values) (*quad, error) {
		return &quad{b: MustGet[*pair](deps, "b"), c: MustGet[*pair](deps, "c")}, nil
	}, DependsOn("b", mid("b")), DependsOn("c", mid("c")))

	got, err := d.Resolve(context.Background(), nil, WithResolver(NewSession(WithParallelDependencies())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aCount.Load() != 1 || got.b.a != got.c.a {
		t.Errorf("expected one shared a, constructed %d", aCount.Load())
	}
}

func TestProvideLookupResolved(t *testing.T) {
	var n atomic.Int32
	c := leaf("c", &n)
	s := NewSession(WithSessionID("sess-1"))

	if s.ID() != "sess-1" {
		t.Errorf("expected sess-1, got %s", s.ID())
	}
	if err := s.Provide("c", &resource{name: "seeded"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Provide("c", &resource{}); err == nil {
		t.Error("expected a second Provide to fail")
	}

	got, err := c.Resolve(context.Background(), nil, WithResolver(s))
	if err != nil || got.name != "seeded" || n.Load() != 0 {
		t.Errorf("expected the seeded instance, got %+v, %v (constructed %d)", got, err, n.Load())
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup of an unknown name should fail")
	}

	other := leaf("other", &n)
	if _, err := other.Resolve(context.Background(), nil, WithResolver(s)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Resolved(); !slices.Equal(got, []string{"c", "other"}) {
		t.Errorf("unexpected resolved list %v", got)
	}
}

func TestNewSessionGeneratesID(t *testing.T) {
	a, b := NewSession(), NewSession()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected distinct generated IDs, got %q and %q", a.ID(), b.ID())
	}
}

func TestSessionLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	s := NewSession(WithLogger(log), WithSessionID("sess-log"))

	ok := Define("ok", func(context.Context, Deps, schema.Values) (int, error) { return 1, nil })
	bad := Define("bad", func(context.Context, Deps, schema.Values) (int, error) { return 0, nil },
		Configure(schema.Shape{"port": schema.Int()}))

	_, _ = ok.Resolve(context.Background(), nil, WithResolver(s))
	_, _ = bad.Resolve(context.Background(), nil, WithResolver(s))

	out := buf.String()
	for _, want := range []string{
		`"message":"component constructed"`,
		`"component":"ok"`,
		`"session_id":"sess-log"`,
		`"message":"component resolution failed"`,
		`"phase":"validation"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got:\n%s", want, out)
		}
	}
}

func TestSessionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	var n atomic.Int32
	a := leaf("a", &n)
	b := Define("b", func(_ context.Context, deps Deps, _ schema.Values) (*resource, error) {
		return MustGet[*resource](deps, "a"), nil
	}, DependsOn("a", a))

	s := NewSession(WithMetrics(metrics))
	if _, err := b.Resolve(context.Background(), nil, WithResolver(s)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "component.constructions" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 2 {
		t.Errorf("expected 2 constructions recorded, got %d", total)
	}
}

func TestPanickingFactoryReleasesEntry(t *testing.T) {
	var calls atomic.Int32
	flaky := Define("flaky", func(context.Context, Deps, schema.Values) (int, error) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return 7, nil
	})
	s := NewSession(WithLogger(logger.Nop()))

	_, err := flaky.Resolve(context.Background(), nil, WithResolver(s))
	if !errors.HasCode(err, errors.ErrCodeConstructionFailed) {
		t.Fatalf("expected CONSTRUCTION_FAILED, got %v", err)
	}
	if appErr, _ := errors.AsAppError(err); appErr.Cause == nil || appErr.Cause.Error() != "panic: boom" {
		t.Errorf("expected the panic as cause, got %v", appErr.Cause)
	}
	if _, ok := s.Lookup("flaky"); ok {
		t.Error("expected the failed entry to be evicted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := flaky.Resolve(ctx, nil, WithResolver(s))
	if err != nil || got != 7 {
		t.Fatalf("expected a retry to construct, got %v, %v", got, err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 factory calls, got %d", calls.Load())
	}
}

// walkCounter counts how often its dependency list is read.
type walkCounter struct {
	fakeNode
	walks atomic.Int32
}

func (n *walkCounter) Dependencies() []Dependency {
	n.walks.Add(1)
	return n.deps
}

func TestHeldEntrySkipsGraphWalk(t *testing.T) {
	root := &walkCounter{fakeNode: fakeNode{name: "root", deps: []Dependency{{Role: "leaf", Node: &fakeNode{name: "leaf"}}}}}
	s := NewSession()
	ctx := context.Background()

	first, err := s.Resolve(ctx, root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	walks := root.walks.Load()
	if walks == 0 {
		t.Fatal("expected the first resolve to read dependencies")
	}

	for range 3 {
		got, err := s.Resolve(ctx, root, nil)
		if err != nil || got != first {
			t.Fatalf("expected the held instance, got %v, %v", got, err)
		}
	}
	if root.walks.Load() != walks {
		t.Errorf("expected no further graph walks, got %d more", root.walks.Load()-walks)
	}
}
