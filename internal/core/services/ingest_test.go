package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulehub/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

func newTestIngest(t *testing.T, loaders []driven.RuleLoader, sources ...domain.SourceDescriptor) (*IngestService, *memory.RuleStore) {
	t.Helper()
	o, err := NewLoaderOrchestrator(loaders, sources)
	require.NoError(t, err)
	store := memory.NewRuleStore()
	return NewIngestService(o, store, WithWatchInterval(0)), store
}

func TestIngestService_Initialise(t *testing.T) {
	loader := &mockLoader{loaderType: "directory", rules: []domain.Rule{testRule("a"), testRule("b")}}
	svc, store := newTestIngest(t, []driven.RuleLoader{loader}, source("directory", "/rules"))

	assert.False(t, svc.Ready())
	assert.Nil(t, svc.Report())

	report, err := svc.Initialise(context.Background())
	require.NoError(t, err)

	assert.True(t, svc.Ready())
	assert.Same(t, report, svc.Report())
	assert.Equal(t, 2, store.Len())
}

func TestIngestService_Initialise_LastWriteWins(t *testing.T) {
	first := testRule("dup")
	first.Description = "first"
	second := testRule("dup")
	second.Description = "second"

	loader := &mockLoader{
		loaderType: "directory",
		loadFunc: func(_ context.Context, s domain.SourceDescriptor) ([]domain.Rule, error) {
			if p, _ := s.String("path"); p == "a" {
				return []domain.Rule{first}, nil
			}
			return []domain.Rule{second}, nil
		},
	}
	svc, store := newTestIngest(t, []driven.RuleLoader{loader}, source("directory", "a"), source("directory", "b"))

	_, err := svc.Initialise(context.Background())
	require.NoError(t, err)

	got, ok := store.Get(context.Background(), "dup")
	require.True(t, ok)
	assert.Equal(t, "second", got.Description, "later source wins")
}

func TestIngestService_Initialise_SkipsInvalidRecords(t *testing.T) {
	loader := &mockLoader{loaderType: "directory", rules: []domain.Rule{testRule("a"), {ID: " "}}}
	svc, store := newTestIngest(t, []driven.RuleLoader{loader}, source("directory", ""))

	_, err := svc.Initialise(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestIngestService_Initialise_CancelledIndexesPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := &mockLoader{
		loaderType: "directory",
		loadFunc: func(_ context.Context, _ domain.SourceDescriptor) ([]domain.Rule, error) {
			cancel()
			return []domain.Rule{testRule("partial")}, nil
		},
	}
	svc, store := newTestIngest(t, []driven.RuleLoader{loader}, source("directory", "a"), source("directory", "b"))

	report, err := svc.Initialise(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, svc.Ready())

	_, ok := store.Get(context.Background(), "partial")
	assert.True(t, ok)
}

func TestIngestService_Apply(t *testing.T) {
	svc, store := newTestIngest(t, nil, source("directory", ""))
	ctx := context.Background()

	a := testRule("a")
	a.Origin = "/rules/a.yaml"
	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeUpserted, Origin: a.Origin, Rule: &a})
	_, ok := store.Get(ctx, "a")
	require.True(t, ok)

	// Same file now declares a different ID.
	renamed := testRule("a2")
	renamed.Origin = a.Origin
	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeUpserted, Origin: a.Origin, Rule: &renamed})
	_, ok = store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "a2")
	assert.True(t, ok)

	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeRemoved, Origin: a.Origin})
	assert.Equal(t, 0, store.Len())
}

func TestIngestService_Apply_IgnoresBadEvents(t *testing.T) {
	svc, store := newTestIngest(t, nil, source("directory", ""))
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, testRule("keep")))

	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeUpserted, Origin: "x.yaml"})
	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeRemoved})
	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeType(99), Origin: "keep.yaml"})
	blank := domain.Rule{ID: ""}
	svc.Apply(ctx, domain.RuleChange{Type: domain.ChangeUpserted, Origin: "y.yaml", Rule: &blank})

	assert.Equal(t, 1, store.Len())
}

func TestIngestService_Watch(t *testing.T) {
	added := testRule("new")
	added.Origin = "new.yaml"

	watcher := &mockWatchLoader{
		mockLoader: mockLoader{loaderType: "directory", rules: []domain.Rule{testRule("old")}},
		changes: []domain.RuleChange{
			{Type: domain.ChangeUpserted, Origin: added.Origin, Rule: &added},
			{Type: domain.ChangeRemoved, Origin: "old.yaml"},
		},
	}
	plain := &mockLoader{loaderType: "git"}

	svc, store := newTestIngest(t, []driven.RuleLoader{watcher, plain},
		source("directory", "/rules"), source("git", ""), source("unknown", ""))

	_, err := svc.Initialise(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_, hasNew := store.Get(context.Background(), "new")
		_, hasOld := store.Get(context.Background(), "old")
		return hasNew && !hasOld
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestIngestService_Subscribe_HoldsChangesUntilInitialised(t *testing.T) {
	edited := testRule("old")
	edited.Description = "rule old, edited"
	added := testRule("new")

	watcher := &mockWatchLoader{
		mockLoader: mockLoader{loaderType: "directory", rules: []domain.Rule{testRule("old")}},
		changes: []domain.RuleChange{
			{Type: domain.ChangeUpserted, Origin: edited.Origin, Rule: &edited},
			{Type: domain.ChangeUpserted, Origin: added.Origin, Rule: &added},
		},
	}
	svc, store := newTestIngest(t, []driven.RuleLoader{watcher}, source("directory", "/rules"))

	ctx, cancel := context.WithCancel(context.Background())
	done := svc.Subscribe(ctx)

	require.Never(t, func() bool {
		return store.Len() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	_, err := svc.Initialise(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		old, hasOld := store.Get(context.Background(), "old")
		_, hasNew := store.Get(context.Background(), "new")
		return hasOld && hasNew && old.Description == edited.Description
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop after cancellation")
	}
}

func TestIngestService_Subscribe_CancelledBeforeInitialise(t *testing.T) {
	added := testRule("new")
	watcher := &mockWatchLoader{
		mockLoader: mockLoader{loaderType: "directory"},
		changes:    []domain.RuleChange{{Type: domain.ChangeUpserted, Origin: added.Origin, Rule: &added}},
	}
	svc, store := newTestIngest(t, []driven.RuleLoader{watcher}, source("directory", "/rules"))

	ctx, cancel := context.WithCancel(context.Background())
	done := svc.Subscribe(ctx)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop after cancellation")
	}
	assert.Equal(t, 0, store.Len())
}

func TestIngestService_Watch_NoWatchableSources(t *testing.T) {
	failing := &mockWatchLoader{
		mockLoader: mockLoader{loaderType: "directory"},
		watchErr:   domain.ErrSourceUnavailable,
	}
	svc, _ := newTestIngest(t, []driven.RuleLoader{failing, &mockLoader{loaderType: "git"}},
		source("directory", ""), source("git", ""))

	assert.NoError(t, svc.Watch(context.Background()))
}

func TestWithWatchInterval(t *testing.T) {
	o, err := NewLoaderOrchestrator(nil, []domain.SourceDescriptor{source("x", "")})
	require.NoError(t, err)

	svc := NewIngestService(o, memory.NewRuleStore())
	assert.InDelta(t, 4.0, float64(svc.limiter.Limit()), 0.001)

	svc = NewIngestService(o, memory.NewRuleStore(), WithWatchInterval(100*time.Millisecond))
	assert.InDelta(t, 10.0, float64(svc.limiter.Limit()), 0.001)
}
