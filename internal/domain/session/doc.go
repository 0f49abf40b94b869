// Package session holds the per-kind Session Store: the local cache of
// session state and the reducer that applies operation outcomes to it.
//
// State per kind:
//   - Sessions: resource id -> sessions, in server order (creation prepends)
//   - Loading/Error/Notice: status of the most recent operation of the kind
//
// Loading, Error and Notice are shared by every resource of the kind, so
// concurrent operations on different resources overwrite each other's flags.
// Keying them by (resource id, operation) would remove that limitation.
//
// Transitions:
//  1. Begin: Loading=true, Error="", Notice=""
//  2. Apply(success): Loading=false, sessions updated per operation
//  3. Apply(failure): Loading=false, Error=message, sessions untouched
//
// Outcomes apply one at a time, in completion order. Stop, resume and delete
// outcomes for sessions the store does not hold are dropped.
//
// Example Usage:
//
//	store := session.NewStore(kind.Apps)
//	store.Begin(session.OpCreate)
//	store.Apply(session.Created("a1", sess))
//	sessions := store.Sessions("a1")
package session
