package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

func TestNewStoreEmpty(t *testing.T) {
	store := NewStore(kind.Apps)

	assert.Equal(t, kind.Apps, store.Kind())
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())
	sessions := store.Sessions("a1")
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(kind.Apps)

	store.Begin(OpCreate)
	assert.True(t, store.Loading())

	store.Apply(Created("a1", sess("s1", types.StatusActive, 1)))
	assert.False(t, store.Loading())

	store.Begin(OpStop)
	store.Apply(Stopped("a1", sess("s1", types.StatusStopped, 2)))

	got, ok := store.Session("a1", "s1")
	require.True(t, ok)
	assert.Equal(t, types.StatusStopped, got.Status)
	assert.Equal(t, 2, got.Version)

	_, ok = store.Session("a1", "missing")
	assert.False(t, ok)
}

func TestStoreErrorPersistsUntilNextBegin(t *testing.T) {
	store := NewStore(kind.Notebooks)

	store.Begin(OpFetch)
	store.Apply(Failure(OpFetch, "n1", "db down"))
	assert.Equal(t, "db down", store.Err())

	store.Apply(Fetched("n2", nil))
	assert.Equal(t, "db down", store.Err(), "success without Begin keeps the message")

	store.Begin(OpFetch)
	assert.Empty(t, store.Err())
}

func TestStoreClearError(t *testing.T) {
	store := NewStore(kind.Notebooks)
	store.Apply(Failure(OpSave, "n1", "boom"))
	store.Apply(Saved(types.SessionRef{ResourceID: "n1", SessionID: "s1"}, "saved"))

	require.Equal(t, "boom", store.Err())
	require.Equal(t, "saved", store.Notice())

	store.ClearError()
	assert.Empty(t, store.Err())
	assert.Empty(t, store.Notice())
}

func TestStoreSelectorsReturnCopies(t *testing.T) {
	store := NewStore(kind.Apps)
	store.Apply(Created("a1", sess("s1", types.StatusActive, 1)))

	sessions := store.Sessions("a1")
	sessions[0].Status = types.StatusStopped

	snapshot := store.Snapshot()
	snapshot.Sessions["a1"][0].Version = 99
	delete(snapshot.Sessions, "a1")

	got, ok := store.Session("a1", "s1")
	require.True(t, ok)
	assert.Equal(t, types.StatusActive, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(kind.Apps)

	var seen []bool
	cancel := store.Subscribe(func(s State) {
		seen = append(seen, s.Loading)
	})

	store.Begin(OpCreate)
	store.Apply(Created("a1", sess("s1", types.StatusActive, 1)))
	cancel()
	cancel()
	store.Begin(OpStop)

	assert.Equal(t, []bool{true, false}, seen)
}

func TestStoreSubscribeOrdered(t *testing.T) {
	store := NewStore(kind.Apps)

	var (
		mu     sync.Mutex
		counts []int
	)
	store.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		counts = append(counts, s.Count())
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Apply(Created("a1", types.Session{ID: types.SessionID(fmt.Sprintf("s%d", i)), ResourceID: "a1"}))
		}(i)
	}
	wg.Wait()

	require.Len(t, counts, 50)
	for i, c := range counts {
		assert.Equal(t, i+1, c)
	}
	assert.Len(t, store.Sessions("a1"), 50)
}

func TestStoreObserverMayReadDuringConcurrentApply(t *testing.T) {
	store := NewStore(kind.Apps)

	entered := make(chan struct{})
	var (
		once  sync.Once
		mu    sync.Mutex
		reads []int
	)
	store.Subscribe(func(s State) {
		first := false
		once.Do(func() {
			first = true
			close(entered)
		})
		if first {
			// give the concurrent Apply time to take the store lock
			time.Sleep(20 * time.Millisecond)
		}
		n := len(store.Sessions("A1"))
		mu.Lock()
		reads = append(reads, n)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Apply(Created("A1", sess("s1", types.StatusActive, 1)))
	}()
	<-entered
	second := make(chan struct{})
	go func() {
		defer close(second)
		store.Apply(Created("A1", sess("s2", types.StatusActive, 1)))
	}()

	for _, ch := range []chan struct{}{done, second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("store blocked while an observer read it")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reads, 2)
	assert.Equal(t, 2, reads[1])
	assert.Len(t, store.Sessions("A1"), 2)
}

func TestStoreResourceIsolation(t *testing.T) {
	store := NewStore(kind.Apps)
	store.Apply(Fetched("a1", []types.Session{sess("s1", types.StatusActive, 1)}))
	before := store.Sessions("a1")

	store.Apply(Created("a2", types.Session{ID: "s5", ResourceID: "a2", Status: types.StatusActive}))
	store.Apply(Stopped("a2", types.Session{ID: "s5", ResourceID: "a2", Status: types.StatusStopped, Version: 2}))
	store.Apply(Deleted(types.SessionRef{ResourceID: "a2", SessionID: "s5"}))

	assert.Equal(t, before, store.Sessions("a1"))
	assert.Empty(t, store.Sessions("a2"))
}

func TestStoreDroppedOutcomeObserved(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	store := NewStore(kind.Apps, WithLogger(logging.Wrap(zap.New(core))), WithMetrics(metrics))

	result := store.Apply(Stopped("a1", sess("ghost", types.StatusStopped, 2)))

	assert.Equal(t, Dropped, result)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DroppedOutcomes.WithLabelValues("apps", "stop_session")))
	assert.Equal(t, 1, logs.FilterMessage("outcome dropped, session not cached").Len())
}

func TestStoreVersionFencingOption(t *testing.T) {
	store := NewStore(kind.Apps, WithVersionFencing(true))
	store.Apply(Created("a1", sess("s1", types.StatusStopped, 4)))

	result := store.Apply(Resumed("a1", sess("s1", types.StatusActive, 3)))

	assert.Equal(t, Fenced, result)
	got, _ := store.Session("a1", "s1")
	assert.Equal(t, types.StatusStopped, got.Status)
}

func TestStoreCachedSessionsGauge(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	store := NewStore(kind.Notebooks, WithMetrics(metrics))

	store.Apply(Fetched("n1", []types.Session{sess("s1", types.StatusActive, 1), sess("s2", types.StatusActive, 1)}))
	store.Apply(Created("n2", sess("s3", types.StatusActive, 1)))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CachedSessions.WithLabelValues("notebooks")))
}
