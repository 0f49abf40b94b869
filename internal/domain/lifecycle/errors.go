package lifecycle

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// OpError is returned by every failed lifecycle operation
type OpError struct {
	Kind       kind.Kind
	Op         session.Op
	ResourceID types.ResourceID
	SessionID  types.SessionID
	// Message is the text recorded in the store
	Message string
	Err     error
}

func (e *OpError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("%s %s %s/%s: %s", e.Kind, e.Op, e.ResourceID, e.SessionID, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Kind, e.Op, e.ResourceID, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// DefaultMessage is the failure text used when the server gives none
func DefaultMessage(op session.Op, d kind.Descriptor) string {
	switch op {
	case session.OpFetch:
		return fmt.Sprintf("Failed to fetch %s agent sessions", d.Singular)
	case session.OpCreate:
		return fmt.Sprintf("Failed to create %s agent session", d.Singular)
	case session.OpStop:
		return fmt.Sprintf("Failed to stop %s agent session", d.Singular)
	case session.OpResume:
		return fmt.Sprintf("Failed to resume %s agent session", d.Singular)
	case session.OpDelete:
		return fmt.Sprintf("Failed to delete %s agent session", d.Singular)
	case session.OpSave:
		return fmt.Sprintf("Failed to save %s workspace", d.Singular)
	default:
		return fmt.Sprintf("Failed to %s %s agent session", op, d.Singular)
	}
}

// failureMessage prefers the server's message. Transport failures and
// unrecognised errors fall back to the per-operation default.
func failureMessage(op session.Op, d kind.Descriptor, err error) string {
	if msg := transport.ServerMessage(err); msg != "" {
		return msg
	}
	return DefaultMessage(op, d)
}
