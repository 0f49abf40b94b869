package registry

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Op names a registry operation
type Op string

const (
	OpFetchAll Op = "fetch_all"
	OpFetch    Op = "fetch"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpDeploy   Op = "deploy"
)

// OpError is returned by every failed registry operation
type OpError struct {
	Kind       kind.Kind
	Op         Op
	ResourceID types.ResourceID
	Message    string
	Err        error
}

func (e *OpError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Kind, e.Op, e.ResourceID, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func defaultMessage(op Op, d kind.Descriptor) string {
	switch op {
	case OpFetchAll:
		return fmt.Sprintf("Failed to fetch %s", d.Kind)
	case OpFetch:
		return fmt.Sprintf("Failed to fetch %s", d.Singular)
	default:
		return fmt.Sprintf("Failed to %s %s", op, d.Singular)
	}
}

func failureMessage(op Op, d kind.Descriptor, err error) string {
	if msg := transport.ServerMessage(err); msg != "" {
		return msg
	}
	return defaultMessage(op, d)
}
