package lifecycle

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Engine implements the operations every kind shares
type Engine[K Kind] struct {
	desc    kind.Descriptor
	doer    transport.Doer
	store   *session.Store
	log     *logging.Logger
	metrics *monitoring.Metrics
}

type options struct {
	log     *logging.Logger
	metrics *monitoring.Metrics
	fence   bool
	store   *session.Store
}

// Option configures an engine
type Option func(*options)

// WithLogger sets the engine and store logger
func WithLogger(log *logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records operation counts and durations
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithVersionFencing drops stop/resume results older than the cached session
func WithVersionFencing(enabled bool) Option {
	return func(o *options) { o.fence = enabled }
}

// WithStore uses an existing store instead of creating one. The store must
// belong to the engine's kind.
func WithStore(store *session.Store) Option {
	return func(o *options) { o.store = store }
}

// NewEngine creates an engine for kind K
func NewEngine[K Kind](doer transport.Doer, opts ...Option) *Engine[K] {
	var k K
	desc := k.Descriptor()

	o := options{log: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.NewNop()
	}

	store := o.store
	if store == nil || store.Kind() != desc.Kind {
		store = session.NewStore(desc.Kind,
			session.WithLogger(o.log),
			session.WithMetrics(o.metrics),
			session.WithVersionFencing(o.fence),
		)
	}

	return &Engine[K]{
		desc:    desc,
		doer:    doer,
		store:   store,
		log:     o.log.Named("lifecycle").With(zap.String("kind", string(desc.Kind))),
		metrics: o.metrics,
	}
}

// Descriptor returns the kind descriptor the engine builds paths from
func (e *Engine[K]) Descriptor() kind.Descriptor {
	return e.desc
}

// Store returns the session store the engine writes to
func (e *Engine[K]) Store() *session.Store {
	return e.store
}

// FetchSessions replaces the cached sessions of rid with the server's list
func (e *Engine[K]) FetchSessions(ctx context.Context, rid types.ResourceID) ([]types.Session, error) {
	return run(ctx, e, session.OpFetch, types.SessionRef{ResourceID: rid},
		func(ctx context.Context) ([]types.Session, error) {
			p, err := e.desc.SessionsPath(rid)
			if err != nil {
				return nil, err
			}
			var sessions []types.Session
			err = e.doer.Do(ctx, http.MethodGet, p, nil, &sessions)
			if sessions == nil {
				sessions = []types.Session{}
			}
			return sessions, err
		},
		func(sessions []types.Session) session.Outcome {
			return session.Fetched(rid, sessions)
		})
}

// CreateSession starts a new session for rid and prepends it to the cache
func (e *Engine[K]) CreateSession(ctx context.Context, rid types.ResourceID) (types.Session, error) {
	return run(ctx, e, session.OpCreate, types.SessionRef{ResourceID: rid},
		e.sessionCall(http.MethodPost, func() (string, error) { return e.desc.SessionsPath(rid) }),
		func(s types.Session) session.Outcome {
			return session.Created(rid, s)
		})
}

// StopSession stops a session. The returned session replaces the cached one;
// it is dropped when the session is not cached.
func (e *Engine[K]) StopSession(ctx context.Context, ref types.SessionRef) (types.Session, error) {
	return run(ctx, e, session.OpStop, ref,
		e.sessionCall(http.MethodPost, func() (string, error) { return e.desc.SessionActionPath(ref, "stop") }),
		func(s types.Session) session.Outcome {
			return session.Stopped(ref.ResourceID, s)
		})
}

// ResumeSession resumes a stopped session, symmetric to StopSession
func (e *Engine[K]) ResumeSession(ctx context.Context, ref types.SessionRef) (types.Session, error) {
	return run(ctx, e, session.OpResume, ref,
		e.sessionCall(http.MethodPost, func() (string, error) { return e.desc.SessionActionPath(ref, "resume") }),
		func(s types.Session) session.Outcome {
			return session.Resumed(ref.ResourceID, s)
		})
}

// sessionCall builds the path inside the call so invalid ids fail the
// operation like any other error
func (e *Engine[K]) sessionCall(method string, build func() (string, error)) func(context.Context) (types.Session, error) {
	return func(ctx context.Context) (types.Session, error) {
		p, err := build()
		if err != nil {
			return types.Session{}, err
		}
		var s types.Session
		err = e.doer.Do(ctx, method, p, nil, &s)
		return s, err
	}
}

// run is the single control flow behind every operation: begin, one call,
// reduce the outcome. Go methods cannot take type parameters, hence a func.
func run[K Kind, T any](
	ctx context.Context,
	e *Engine[K],
	op session.Op,
	ref types.SessionRef,
	call func(context.Context) (T, error),
	success func(T) session.Outcome,
) (T, error) {
	ctx = context.WithoutCancel(ctx)
	span, ctx := tracing.StartSpan(ctx, string(e.desc.Kind)+"."+string(op))

	log := e.log.With(zap.String("op", string(op)), zap.String("resource_id", string(ref.ResourceID)))
	if ref.SessionID != "" {
		log = log.With(zap.String("session_id", string(ref.SessionID)))
	}
	log = log.With(span.Fields()...)

	e.store.Begin(op)
	log.Debug("dispatching operation")

	v, err := call(ctx)
	duration := span.Finish(err)
	e.metrics.ObserveOperation(string(e.desc.Kind), string(op), err != nil, duration)

	if err != nil {
		message := failureMessage(op, e.desc, err)
		e.store.Apply(session.Failure(op, ref.ResourceID, message))
		log.Warn("operation failed",
			zap.String("message", message),
			zap.Duration("duration", duration),
			zap.Error(err))
		var zero T
		return zero, &OpError{
			Kind:       e.desc.Kind,
			Op:         op,
			ResourceID: ref.ResourceID,
			SessionID:  ref.SessionID,
			Message:    message,
			Err:        err,
		}
	}

	e.store.Apply(success(v))
	log.Debug("operation completed", zap.Duration("duration", duration))
	return v, nil
}
