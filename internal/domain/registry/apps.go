package registry

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// AppRegistry caches apps and deploys them
type AppRegistry struct {
	*Registry[types.App]
	deployer workspace.Deployer
}

// NewAppRegistry creates the app registry. A nil deployer uses the HTTP
// implementation over doer.
func NewAppRegistry(doer transport.Doer, deployer workspace.Deployer, opts ...Option) *AppRegistry {
	if deployer == nil {
		deployer = workspace.NewHTTP(doer)
	}
	return &AppRegistry{
		Registry: newRegistry[types.App](kind.Apps, doer, opts...),
		deployer: deployer,
	}
}

// Deploy publishes an app and upserts the returned app, which carries its
// deployment port
func (a *AppRegistry) Deploy(ctx context.Context, id types.ResourceID) (types.App, error) {
	app, err := call(ctx, a.Registry, OpDeploy, id, func(ctx context.Context) (types.App, error) {
		return a.deployer.Deploy(ctx, id)
	})
	if err != nil {
		return types.App{}, err
	}
	a.upsert(app)
	return app, nil
}

// NotebookRegistry caches notebooks
type NotebookRegistry struct {
	*Registry[types.Notebook]
}

// NewNotebookRegistry creates the notebook registry
func NewNotebookRegistry(doer transport.Doer, opts ...Option) *NotebookRegistry {
	return &NotebookRegistry{Registry: newRegistry[types.Notebook](kind.Notebooks, doer, opts...)}
}
