package workspace

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Deployer publishes an app and returns it with its deployment port set
type Deployer interface {
	Deploy(ctx context.Context, appID types.ResourceID) (types.App, error)
}

// Saver persists the workspace of a running notebook session
type Saver interface {
	Save(ctx context.Context, notebookID types.ResourceID, sessionID types.SessionID) (SaveResult, error)
}

// SaveResult is the server's confirmation of a save
type SaveResult struct {
	Message string `json:"message"`
}

// HTTP implements Deployer and Saver over the platform API
type HTTP struct {
	doer      transport.Doer
	apps      kind.Descriptor
	notebooks kind.Descriptor
}

var (
	_ Deployer = (*HTTP)(nil)
	_ Saver    = (*HTTP)(nil)
)

// NewHTTP creates the HTTP collaborator
func NewHTTP(doer transport.Doer) *HTTP {
	return &HTTP{
		doer:      doer,
		apps:      kind.MustLookup(kind.Apps),
		notebooks: kind.MustLookup(kind.Notebooks),
	}
}

// Deploy calls POST /api/apps/{appId}/deploy
func (h *HTTP) Deploy(ctx context.Context, appID types.ResourceID) (types.App, error) {
	p, err := h.apps.ResourceActionPath(appID, "deploy")
	if err != nil {
		return types.App{}, err
	}
	var app types.App
	if err := h.doer.Do(ctx, http.MethodPost, p, nil, &app); err != nil {
		return types.App{}, err
	}
	return app, nil
}

// Save calls POST /api/notebooks/{notebookId}/sessions/{sid}/save
func (h *HTTP) Save(ctx context.Context, notebookID types.ResourceID, sessionID types.SessionID) (SaveResult, error) {
	ref := types.SessionRef{ResourceID: notebookID, SessionID: sessionID}
	p, err := h.notebooks.SessionActionPath(ref, "save")
	if err != nil {
		return SaveResult{}, err
	}
	var result SaveResult
	if err := h.doer.Do(ctx, http.MethodPost, p, nil, &result); err != nil {
		return SaveResult{}, err
	}
	return result, nil
}
