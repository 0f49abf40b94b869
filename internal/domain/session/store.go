package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Observer receives a copy of the state after every transition
type Observer func(State)

// Store is the session cache of one kind
type Store struct {
	kind    kind.Kind
	log     *logging.Logger
	metrics *monitoring.Metrics
	opts    ReduceOptions

	mu        sync.Mutex
	state     State
	observers map[int]Observer
	nextObs   int
	published uint64

	// turn orders deliveries by the sequence taken under mu. No lock is
	// held while observers run.
	turnMu    sync.Mutex
	turn      *sync.Cond
	delivered uint64
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(log *logging.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records cache size and dropped outcomes
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithVersionFencing drops stop/resume results older than the cached session
func WithVersionFencing(enabled bool) Option {
	return func(s *Store) { s.opts.FenceStaleVersions = enabled }
}

// NewStore creates an empty store for k
func NewStore(k kind.Kind, opts ...Option) *Store {
	s := &Store{
		kind:      k,
		log:       logging.NewNop(),
		state:     State{Sessions: map[types.ResourceID][]types.Session{}},
		observers: make(map[int]Observer),
	}
	s.turn = sync.NewCond(&s.turnMu)
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("session_store").With(zap.String("kind", string(k)))
	return s
}

// Kind returns the kind the store caches
func (s *Store) Kind() kind.Kind {
	return s.kind
}

// Begin marks an operation as in flight
func (s *Store) Begin(op Op) {
	s.mu.Lock()
	s.state = Begin(s.state)
	s.log.Debug("operation started", zap.String("op", string(op)))
	s.publish()
}

// Apply reduces one outcome into the store
func (s *Store) Apply(o Outcome) Result {
	s.mu.Lock()
	next, result := Reduce(s.state, o, s.opts)
	s.state = next

	switch result {
	case Dropped:
		s.log.Debug("outcome dropped, session not cached",
			zap.String("op", string(o.Op)),
			zap.String("resource_id", string(o.ResourceID)))
		s.metrics.RecordDroppedOutcome(string(s.kind), string(o.Op))
	case Fenced:
		s.log.Debug("outcome fenced, stale version",
			zap.String("op", string(o.Op)),
			zap.String("resource_id", string(o.ResourceID)))
		s.metrics.RecordDroppedOutcome(string(s.kind), string(o.Op))
	}
	if o.Failed() {
		s.log.Warn("operation failed",
			zap.String("op", string(o.Op)),
			zap.String("resource_id", string(o.ResourceID)),
			zap.String("error", o.Err))
	}
	s.metrics.SetCachedSessions(string(s.kind), s.state.Count())
	s.publish()
	return result
}

// ClearError resets the error and notice messages
func (s *Store) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.state.Notice = ""
	s.publish()
}

// Snapshot returns a deep copy of the whole state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Sessions returns the cached sessions of rid, or an empty slice
func (s *Store) Sessions(rid types.ResourceID) []types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Session{}, s.state.Sessions[rid]...)
}

// Session returns one cached session
func (s *Store) Session(rid types.ResourceID, sid types.SessionID) (types.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.state.Sessions[rid], sid)
	if idx < 0 {
		return types.Session{}, false
	}
	return s.state.Sessions[rid][idx], true
}

// Loading reports whether an operation of the kind is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// Err returns the last operation's error message, or ""
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Error
}

// Notice returns the last confirmation message, or ""
func (s *Store) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Notice
}

// Subscribe registers fn and returns a function that removes it.
// Observers run synchronously, in transition order, and may read the store.
// They must not call Begin, Apply or ClearError.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// publish must be called with mu held; it releases mu, then delivers the
// snapshot once every earlier transition has been delivered
func (s *Store) publish() {
	seq := s.published
	s.published++

	var (
		snapshot  State
		observers []Observer
	)
	if len(s.observers) > 0 {
		snapshot = s.state.Clone()
		observers = make([]Observer, 0, len(s.observers))
		for i := 0; i < s.nextObs; i++ {
			if fn, ok := s.observers[i]; ok {
				observers = append(observers, fn)
			}
		}
	}
	s.mu.Unlock()

	s.turnMu.Lock()
	for s.delivered != seq {
		s.turn.Wait()
	}
	s.turnMu.Unlock()

	defer func() {
		s.turnMu.Lock()
		s.delivered++
		s.turnMu.Unlock()
		s.turn.Broadcast()
	}()
	for _, fn := range observers {
		fn(snapshot)
	}
}
