// Package types provides the shared data model of the workbench client.
//
// Core Types:
//   - App, Notebook: top-level resources owned by the registries
//   - Session: a live or suspended compute context bound to one resource
//   - Status: session status enum (active, stopped)
//   - SessionRef: (resource id, session id) address of a session
//
// Resources and sessions are plain values. The registries and the session
// store hand out copies, so callers may keep or modify what they receive.
//
// Example Usage:
//
//	ref := types.SessionRef{ResourceID: "a1", SessionID: "s1"}
//	if sess.Status == types.StatusStopped { ... }
package types
