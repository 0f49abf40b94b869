// Package testutil provides fixtures and mocks shared by package tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/fakeapi"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Env is a running fake platform with a client pointed at it
type Env struct {
	Platform *fakeapi.Platform
	Server   *httptest.Server
	Config   *config.Config
	Client   *transport.Client
}

// NewEnv starts an empty fake platform for the duration of the test
func NewEnv(t *testing.T) *Env {
	t.Helper()

	platform := fakeapi.NewPlatform()
	fake := fakeapi.NewServer(platform, config.Default().FakeServer, nil)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	cfg := Config(srv.URL)
	return &Env{
		Platform: platform,
		Server:   srv,
		Config:   cfg,
		Client:   transport.New(cfg),
	}
}

// Config returns a client config for tests: no retries, no breaker, short timeout
func Config(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = config.Duration{Duration: 5 * time.Second}
	cfg.Retry.Count = 0
	cfg.Breaker.Enabled = false
	return cfg
}

// CreateApp adds an app to the platform
func (e *Env) CreateApp(t *testing.T, name string) types.ResourceID {
	t.Helper()
	return e.Platform.Create(kind.Apps, types.CreateRequest{Name: name})
}

// CreateNotebook adds a notebook to the platform
func (e *Env) CreateNotebook(t *testing.T, name string) types.ResourceID {
	t.Helper()
	return e.Platform.Create(kind.Notebooks, types.CreateRequest{Name: name})
}

// StartSession starts a session directly on the platform
func (e *Env) StartSession(t *testing.T, k kind.Kind, rid types.ResourceID) types.Session {
	t.Helper()
	s, err := e.Platform.StartSession(k, rid)
	require.NoError(t, err)
	return s
}

// MockDeployer is a testify mock of workspace.Deployer
type MockDeployer struct {
	mock.Mock
}

var _ workspace.Deployer = (*MockDeployer)(nil)

// Deploy mocks the Deploy method.
func (m *MockDeployer) Deploy(ctx context.Context, appID types.ResourceID) (types.App, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).(types.App), args.Error(1)
}

// MockSaver is a testify mock of workspace.Saver
type MockSaver struct {
	mock.Mock
}

var _ workspace.Saver = (*MockSaver)(nil)

// Save mocks the Save method.
func (m *MockSaver) Save(ctx context.Context, notebookID types.ResourceID, sessionID types.SessionID) (workspace.SaveResult, error) {
	args := m.Called(ctx, notebookID, sessionID)
	return args.Get(0).(workspace.SaveResult), args.Error(1)
}
