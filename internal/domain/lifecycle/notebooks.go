package lifecycle

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// NotebookSessions is the notebook engine plus workspace saves
type NotebookSessions struct {
	*Engine[Notebooks]
	saver workspace.Saver
}

// NewNotebookSessions creates the notebook session engine. A nil saver uses
// the HTTP implementation over doer.
func NewNotebookSessions(doer transport.Doer, saver workspace.Saver, opts ...Option) *NotebookSessions {
	if saver == nil {
		saver = workspace.NewHTTP(doer)
	}
	return &NotebookSessions{Engine: NewEngine[Notebooks](doer, opts...), saver: saver}
}

// SaveWorkspace persists a session's workspace. The cached sessions are not
// touched; the server's message becomes the store notice.
func (n *NotebookSessions) SaveWorkspace(ctx context.Context, ref types.SessionRef) (string, error) {
	return run(ctx, n.Engine, session.OpSave, ref,
		func(ctx context.Context) (string, error) {
			result, err := n.saver.Save(ctx, ref.ResourceID, ref.SessionID)
			return result.Message, err
		},
		func(message string) session.Outcome {
			return session.Saved(ref, message)
		})
}
