package lifecycle

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// AppSessions is the app engine plus session deletion
type AppSessions struct {
	*Engine[Apps]
}

// NewAppSessions creates the app session engine
func NewAppSessions(doer transport.Doer, opts ...Option) *AppSessions {
	return &AppSessions{Engine: NewEngine[Apps](doer, opts...)}
}

// DeleteSession removes a session on the server and from the cache. The
// response body is ignored; the session id is the result.
func (a *AppSessions) DeleteSession(ctx context.Context, ref types.SessionRef) (types.SessionID, error) {
	return run(ctx, a.Engine, session.OpDelete, ref,
		func(ctx context.Context) (types.SessionID, error) {
			p, err := a.desc.SessionPath(ref)
			if err != nil {
				return "", err
			}
			return ref.SessionID, a.doer.Do(ctx, http.MethodDelete, p, nil, nil)
		},
		func(types.SessionID) session.Outcome {
			return session.Deleted(ref)
		})
}
