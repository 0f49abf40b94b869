package registry

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Registry is the CRUD cache of one resource kind
type Registry[R types.Resource] struct {
	desc    kind.Descriptor
	doer    transport.Doer
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	items   []R // server order, creation prepends
	loading bool
	err     string
}

// Option configures a registry
type Option func(*options)

type options struct {
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// WithLogger sets the registry logger
func WithLogger(log *logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records the cached resource count
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newRegistry[R types.Resource](k kind.Kind, doer transport.Doer, opts ...Option) *Registry[R] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.NewNop()
	}
	return &Registry[R]{
		desc:    kind.MustLookup(k),
		doer:    doer,
		log:     o.log.Named("registry").With(zap.String("kind", string(k))),
		metrics: o.metrics,
		items:   []R{},
	}
}

// Kind returns the registry's resource kind
func (r *Registry[R]) Kind() kind.Kind {
	return r.desc.Kind
}

// FetchAll replaces the cache with the server's list
func (r *Registry[R]) FetchAll(ctx context.Context) ([]R, error) {
	items, err := call(ctx, r, OpFetchAll, "", func(ctx context.Context) ([]R, error) {
		var items []R
		err := r.doer.Do(ctx, http.MethodGet, r.desc.BasePath(), nil, &items)
		return items, err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []R{}
	}
	r.mu.Lock()
	r.items = append([]R{}, items...)
	r.finish()
	r.mu.Unlock()
	return items, nil
}

// Fetch reads one resource and upserts it
func (r *Registry[R]) Fetch(ctx context.Context, id types.ResourceID) (R, error) {
	item, err := call(ctx, r, OpFetch, id, func(ctx context.Context) (R, error) {
		var item R
		p, err := r.desc.ResourcePath(id)
		if err != nil {
			return item, err
		}
		err = r.doer.Do(ctx, http.MethodGet, p, nil, &item)
		return item, err
	})
	if err != nil {
		return item, err
	}
	r.upsert(item)
	return item, nil
}

// Create adds a resource and prepends it to the cache
func (r *Registry[R]) Create(ctx context.Context, req types.CreateRequest) (R, error) {
	item, err := call(ctx, r, OpCreate, "", func(ctx context.Context) (R, error) {
		var item R
		err := r.doer.Do(ctx, http.MethodPost, r.desc.BasePath(), req, &item)
		return item, err
	})
	if err != nil {
		return item, err
	}
	r.mu.Lock()
	r.items = append([]R{item}, r.items...)
	r.finish()
	r.mu.Unlock()
	return item, nil
}

// Update changes the name or description of a resource and upserts it
func (r *Registry[R]) Update(ctx context.Context, id types.ResourceID, req types.UpdateRequest) (R, error) {
	item, err := call(ctx, r, OpUpdate, id, func(ctx context.Context) (R, error) {
		var item R
		p, err := r.desc.ResourcePath(id)
		if err != nil {
			return item, err
		}
		err = r.doer.Do(ctx, http.MethodPut, p, req, &item)
		return item, err
	})
	if err != nil {
		return item, err
	}
	r.upsert(item)
	return item, nil
}

// Delete removes a resource; removing an uncached id is a no-op locally
func (r *Registry[R]) Delete(ctx context.Context, id types.ResourceID) error {
	_, err := call(ctx, r, OpDelete, id, func(ctx context.Context) (struct{}, error) {
		p, err := r.desc.ResourcePath(id)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, r.doer.Do(ctx, http.MethodDelete, p, nil, nil)
	})
	if err != nil {
		return err
	}
	r.mu.Lock()
	next := make([]R, 0, len(r.items))
	for _, item := range r.items {
		if item.Key() != id {
			next = append(next, item)
		}
	}
	r.items = next
	r.finish()
	r.mu.Unlock()
	return nil
}

// List returns a copy of the cached resources
func (r *Registry[R]) List() []R {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]R{}, r.items...)
}

// Get returns one cached resource
func (r *Registry[R]) Get(id types.ResourceID) (R, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero R
	return zero, false
}

// Loading reports whether an operation is in flight
func (r *Registry[R]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Err returns the last failure message, or ""
func (r *Registry[R]) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Registry[R]) upsert(item R) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].Key() == item.Key() {
			next := append([]R{}, r.items...)
			next[i] = item
			r.items = next
			r.finish()
			return
		}
	}
	r.items = append([]R{item}, r.items...)
	r.finish()
}

// finish must be called with mu held
func (r *Registry[R]) finish() {
	r.loading = false
	r.metrics.SetRegistryResources(string(r.desc.Kind), len(r.items))
}

// call runs fn between the loading transitions. On success the caller
// applies the result and clears loading through finish.
func call[R types.Resource, T any](ctx context.Context, r *Registry[R], op Op, id types.ResourceID, fn func(context.Context) (T, error)) (T, error) {
	ctx = context.WithoutCancel(ctx)
	span, ctx := tracing.StartSpan(ctx, string(r.desc.Kind)+"."+string(op))

	r.mu.Lock()
	r.loading = true
	r.err = ""
	r.mu.Unlock()

	v, err := fn(ctx)
	span.Finish(err)
	if err == nil {
		return v, nil
	}

	message := failureMessage(op, r.desc, err)
	r.mu.Lock()
	r.loading = false
	r.err = message
	r.mu.Unlock()

	r.log.Warn("registry operation failed",
		zap.String("op", string(op)),
		zap.String("resource_id", string(id)),
		zap.String("message", message),
		zap.String("trace_id", string(span.TraceID)),
		zap.Duration("duration", span.Duration),
		zap.Error(err))

	var zero T
	return zero, &OpError{Kind: r.desc.Kind, Op: op, ResourceID: id, Message: message, Err: err}
}
