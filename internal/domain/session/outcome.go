package session

import "github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"

// Op names a lifecycle operation
type Op string

const (
	OpFetch  Op = "fetch_sessions"
	OpCreate Op = "create_session"
	OpStop   Op = "stop_session"
	OpResume Op = "resume_session"
	OpDelete Op = "delete_session"
	OpSave   Op = "save_workspace"
)

// Outcome is the result of one lifecycle operation, the unit Reduce consumes
type Outcome struct {
	Op         Op
	ResourceID types.ResourceID
	// Session is set for create, stop and resume
	Session *types.Session
	// Sessions is set for fetch
	Sessions []types.Session
	// SessionID is set for delete and save
	SessionID types.SessionID
	// Message is the confirmation of a save
	Message string
	// Err is the failure message; empty on success
	Err string
}

// Failed reports whether the outcome carries an error
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Fetched is the outcome of a successful fetch
func Fetched(rid types.ResourceID, sessions []types.Session) Outcome {
	if sessions == nil {
		sessions = []types.Session{}
	}
	return Outcome{Op: OpFetch, ResourceID: rid, Sessions: sessions}
}

// Created is the outcome of a successful create
func Created(rid types.ResourceID, s types.Session) Outcome {
	return Outcome{Op: OpCreate, ResourceID: rid, Session: &s}
}

// Stopped is the outcome of a successful stop
func Stopped(rid types.ResourceID, s types.Session) Outcome {
	return Outcome{Op: OpStop, ResourceID: rid, Session: &s}
}

// Resumed is the outcome of a successful resume
func Resumed(rid types.ResourceID, s types.Session) Outcome {
	return Outcome{Op: OpResume, ResourceID: rid, Session: &s}
}

// Deleted is the outcome of a successful delete
func Deleted(ref types.SessionRef) Outcome {
	return Outcome{Op: OpDelete, ResourceID: ref.ResourceID, SessionID: ref.SessionID}
}

// Saved is the outcome of a successful workspace save
func Saved(ref types.SessionRef, message string) Outcome {
	return Outcome{Op: OpSave, ResourceID: ref.ResourceID, SessionID: ref.SessionID, Message: message}
}

// Failure is the outcome of any failed operation
func Failure(op Op, rid types.ResourceID, message string) Outcome {
	return Outcome{Op: op, ResourceID: rid, Err: message}
}
