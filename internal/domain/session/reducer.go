package session

import "github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"

// State is the per-kind store content
type State struct {
	Sessions map[types.ResourceID][]types.Session
	Loading  bool
	Error    string
	// Notice carries a non-error confirmation, e.g. a saved workspace
	Notice string
}

// ReduceOptions tunes how outcomes are applied
type ReduceOptions struct {
	// FenceStaleVersions drops stop/resume results older than the cached
	// session. Off by default: the last completed response wins.
	FenceStaleVersions bool
}

// Result reports what Reduce did with an outcome
type Result int

const (
	Applied Result = iota
	// Dropped means the outcome targeted a session the store does not hold
	Dropped
	// Fenced means the outcome was older than the cached session
	Fenced
)

// Begin returns the state after an operation is dispatched
func Begin(state State) State {
	state.Loading = true
	state.Error = ""
	state.Notice = ""
	return state
}

// Reduce applies o to state and returns the new state. The input is never
// mutated: the map is copied and only the touched resource's slice is rebuilt.
func Reduce(state State, o Outcome, opts ReduceOptions) (State, Result) {
	state.Loading = false

	if o.Failed() {
		state.Error = o.Err
		return state, Applied
	}

	switch o.Op {
	case OpFetch:
		state.Sessions = withEntry(state.Sessions, o.ResourceID, append([]types.Session{}, o.Sessions...))
		return state, Applied

	case OpCreate:
		current := state.Sessions[o.ResourceID]
		next := make([]types.Session, 0, len(current)+1)
		next = append(next, *o.Session)
		next = append(next, current...)
		state.Sessions = withEntry(state.Sessions, o.ResourceID, next)
		return state, Applied

	case OpStop, OpResume:
		current := state.Sessions[o.ResourceID]
		idx := indexOf(current, o.Session.ID)
		if idx < 0 {
			return state, Dropped
		}
		if opts.FenceStaleVersions && o.Session.Version < current[idx].Version {
			return state, Fenced
		}
		next := append([]types.Session{}, current...)
		next[idx] = *o.Session
		state.Sessions = withEntry(state.Sessions, o.ResourceID, next)
		return state, Applied

	case OpDelete:
		current := state.Sessions[o.ResourceID]
		idx := indexOf(current, o.SessionID)
		if idx < 0 {
			return state, Dropped
		}
		next := make([]types.Session, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		state.Sessions = withEntry(state.Sessions, o.ResourceID, next)
		return state, Applied

	case OpSave:
		state.Notice = o.Message
		return state, Applied
	}

	return state, Applied
}

// Count returns the number of cached sessions across resources
func (s State) Count() int {
	n := 0
	for _, sessions := range s.Sessions {
		n += len(sessions)
	}
	return n
}

// Clone deep-copies the state
func (s State) Clone() State {
	out := s
	out.Sessions = make(map[types.ResourceID][]types.Session, len(s.Sessions))
	for rid, sessions := range s.Sessions {
		out.Sessions[rid] = append([]types.Session{}, sessions...)
	}
	return out
}

func withEntry(m map[types.ResourceID][]types.Session, rid types.ResourceID, sessions []types.Session) map[types.ResourceID][]types.Session {
	out := make(map[types.ResourceID][]types.Session, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[rid] = sessions
	return out
}

func indexOf(sessions []types.Session, sid types.SessionID) int {
	for i := range sessions {
		if sessions[i].ID == sid {
			return i
		}
	}
	return -1
}
