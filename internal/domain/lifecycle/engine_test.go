package lifecycle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
	wbtest "github.com/GriffinCanCode/AgentOS/workbench/internal/testutil"
)

type reply struct {
	status int
	body   string
}

// scripted answers "METHOD path" with a canned reply and records every hit
type scripted struct {
	mu      sync.Mutex
	replies map[string]reply
	hits    []string
}

func (s *scripted) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.EscapedPath()
	s.mu.Lock()
	s.hits = append(s.hits, key)
	rep, ok := s.replies[key]
	s.mu.Unlock()
	if !ok {
		rep = reply{status: http.StatusNotFound, body: `{"detail":"no route"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (s *scripted) set(key string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[key] = reply{status: status, body: body}
}

func newServer(t *testing.T) (*scripted, *transport.Client) {
	t.Helper()
	script := &scripted{replies: map[string]reply{}}
	srv := httptest.NewServer(script)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.Retry.Count = 0
	cfg.Breaker.Enabled = false
	return script, transport.New(cfg)
}

func ref(rid, sid string) types.SessionRef {
	return types.SessionRef{ResourceID: types.ResourceID(rid), SessionID: types.SessionID(sid)}
}

func TestCapabilitySplit(t *testing.T) {
	_, hasSave := reflect.TypeOf(&AppSessions{}).MethodByName("SaveWorkspace")
	_, hasDelete := reflect.TypeOf(&NotebookSessions{}).MethodByName("DeleteSession")
	assert.False(t, hasSave)
	assert.False(t, hasDelete)

	_, hasDelete = reflect.TypeOf(&AppSessions{}).MethodByName("DeleteSession")
	_, hasSave = reflect.TypeOf(&NotebookSessions{}).MethodByName("SaveWorkspace")
	assert.True(t, hasDelete)
	assert.True(t, hasSave)

	assert.True(t, Apps{}.Descriptor().Has(kind.CapDeleteSession))
	assert.True(t, Notebooks{}.Descriptor().Has(kind.CapSaveWorkspace))
}

func TestCreateThenStop(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/apps/A1/sessions", http.StatusOK, `{"id":"s1","app_id":"A1","status":"active","version":1}`)
	script.set("POST /api/apps/A1/sessions/s1/stop", http.StatusOK, `{"id":"s1","app_id":"A1","status":"stopped","version":2}`)

	apps := NewAppSessions(client)
	ctx := context.Background()

	created, err := apps.CreateSession(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, created.Status)
	assert.Equal(t, []types.Session{created}, apps.Store().Sessions("A1"))

	stopped, err := apps.StopSession(ctx, ref("A1", "s1"))
	require.NoError(t, err)

	sessions := apps.Store().Sessions("A1")
	require.Len(t, sessions, 1)
	assert.Equal(t, stopped, sessions[0])
	assert.Equal(t, types.StatusStopped, sessions[0].Status)
	assert.False(t, apps.Store().Loading())
	assert.Empty(t, apps.Store().Err())
}

func TestFetchFailureKeepsSessions(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"active"}]`)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)
	before := apps.Store().Sessions("A1")

	script.set("GET /api/apps/A1/sessions", http.StatusInternalServerError, `{"detail":"db down"}`)
	_, err = apps.FetchSessions(ctx, "A1")

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, session.OpFetch, opErr.Op)
	assert.Equal(t, kind.Apps, opErr.Kind)
	assert.Equal(t, "db down", opErr.Message)
	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)

	store := apps.Store()
	assert.False(t, store.Loading())
	assert.Equal(t, "db down", store.Err())
	assert.Equal(t, before, store.Sessions("A1"))
}

func TestFetchReplacesEvenWhenEmpty(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/notebooks/n1/sessions", http.StatusOK, `[{"id":"s1","notebook_id":"n1","status":"active"},{"id":"s2","notebook_id":"n1","status":"stopped"}]`)

	notebooks := NewNotebookSessions(client, nil)
	ctx := context.Background()

	got, err := notebooks.FetchSessions(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.ResourceID("n1"), got[1].ResourceID)

	script.set("GET /api/notebooks/n1/sessions", http.StatusOK, `[]`)
	got, err = notebooks.FetchSessions(ctx, "n1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, notebooks.Store().Sessions("n1"))
}

func TestStopUnknownSessionDropped(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"active"}]`)
	script.set("POST /api/apps/A1/sessions/ghost/stop", http.StatusOK, `{"id":"ghost","app_id":"A1","status":"stopped"}`)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)

	_, err = apps.StopSession(ctx, ref("A1", "ghost"))
	require.NoError(t, err)

	sessions := apps.Store().Sessions("A1")
	require.Len(t, sessions, 1)
	assert.Equal(t, types.SessionID("s1"), sessions[0].ID)
	assert.Empty(t, apps.Store().Sessions("A2"))
}

func TestInvalidIDsNeverReachTheServer(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"active"}]`)
	script.set("POST /api/apps/A1/stop", http.StatusOK, `{"id":"s1","app_id":"A1","status":"stopped"}`)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"stop parent session", func() error { _, err := apps.StopSession(ctx, ref("A1", "..")); return err }},
		{"resume parent resource", func() error { _, err := apps.ResumeSession(ctx, ref("..", "x")); return err }},
		{"delete empty session", func() error { _, err := apps.DeleteSession(ctx, ref("A1", "")); return err }},
		{"create empty resource", func() error { _, err := apps.CreateSession(ctx, ""); return err }},
		{"fetch dot resource", func() error { _, err := apps.FetchSessions(ctx, "."); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var opErr *OpError
			require.ErrorAs(t, err, &opErr)
			assert.ErrorIs(t, err, kind.ErrInvalidSegment)
			assert.Equal(t, opErr.Message, apps.Store().Err())
		})
	}

	script.mu.Lock()
	assert.Equal(t, []string{"GET /api/apps/A1/sessions"}, script.hits)
	script.mu.Unlock()
	require.Len(t, apps.Store().Sessions("A1"), 1)
	assert.Equal(t, types.StatusActive, apps.Store().Sessions("A1")[0].Status)
}

func TestResumeReplacesInPlace(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK,
		`[{"id":"s1","app_id":"A1","status":"active"},{"id":"s2","app_id":"A1","status":"stopped","version":2},{"id":"s3","app_id":"A1","status":"active"}]`)
	script.set("POST /api/apps/A1/sessions/s2/resume", http.StatusOK,
		`{"id":"s2","app_id":"A1","status":"active","version":3,"container_id":"c-new"}`)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)

	_, err = apps.ResumeSession(ctx, ref("A1", "s2"))
	require.NoError(t, err)

	sessions := apps.Store().Sessions("A1")
	require.Len(t, sessions, 3)
	assert.Equal(t, []types.SessionID{"s1", "s2", "s3"}, []types.SessionID{sessions[0].ID, sessions[1].ID, sessions[2].ID})
	assert.Equal(t, "c-new", sessions[1].ContainerID)
	assert.Equal(t, types.StatusActive, sessions[1].Status)
}

func TestDeleteSession(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"active"},{"id":"s2","app_id":"A1","status":"active"}]`)
	script.set("DELETE /api/apps/A1/sessions/s1", http.StatusNoContent, ``)
	script.set("DELETE /api/apps/A1/sessions/missing", http.StatusOK, `{"ok":true}`)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)

	sid, err := apps.DeleteSession(ctx, ref("A1", "s1"))
	require.NoError(t, err)
	assert.Equal(t, types.SessionID("s1"), sid)

	_, err = apps.DeleteSession(ctx, ref("A1", "missing"))
	require.NoError(t, err)

	sessions := apps.Store().Sessions("A1")
	require.Len(t, sessions, 1)
	assert.Equal(t, types.SessionID("s2"), sessions[0].ID)
}

func TestDefaultMessages(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/apps/A1/sessions/s1/stop", http.StatusBadGateway, `<html>bad gateway</html>`)

	apps := NewAppSessions(client)
	ctx := context.Background()

	_, err := apps.StopSession(ctx, ref("A1", "s1"))
	require.Error(t, err)
	assert.Equal(t, "Bad Gateway", apps.Store().Err(), "unparsable payload falls back to status text")

	tests := []struct {
		op   session.Op
		desc kind.Descriptor
		want string
	}{
		{session.OpFetch, Apps{}.Descriptor(), "Failed to fetch app agent sessions"},
		{session.OpCreate, Notebooks{}.Descriptor(), "Failed to create notebook agent session"},
		{session.OpStop, Apps{}.Descriptor(), "Failed to stop app agent session"},
		{session.OpResume, Notebooks{}.Descriptor(), "Failed to resume notebook agent session"},
		{session.OpDelete, Apps{}.Descriptor(), "Failed to delete app agent session"},
		{session.OpSave, Notebooks{}.Descriptor(), "Failed to save notebook workspace"},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultMessage(tt.op, tt.desc))
		})
	}
}

func TestTransportFailureUsesDefault(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	cfg.API.Timeout = config.Duration{Duration: time.Second}
	cfg.Retry.Count = 0
	apps := NewAppSessions(transport.New(cfg))

	_, err := apps.CreateSession(context.Background(), "A1")

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, transport.ClassTransport, terr.Class)
	assert.Equal(t, "Failed to create app agent session", apps.Store().Err())
	assert.Empty(t, apps.Store().Sessions("A1"))
}

func TestResourceIsolation(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"active"}]`)
	script.set("POST /api/apps/A2/sessions", http.StatusOK, `{"id":"s9","app_id":"A2","status":"active"}`)
	script.set("POST /api/apps/A2/sessions/s9/stop", http.StatusOK, `{"id":"s9","app_id":"A2","status":"stopped"}`)
	script.set("DELETE /api/apps/A2/sessions/s9", http.StatusNoContent, ``)

	apps := NewAppSessions(client)
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)
	before := apps.Store().Sessions("A1")

	_, err = apps.CreateSession(ctx, "A2")
	require.NoError(t, err)
	_, err = apps.StopSession(ctx, ref("A2", "s9"))
	require.NoError(t, err)
	_, err = apps.DeleteSession(ctx, ref("A2", "s9"))
	require.NoError(t, err)

	assert.Equal(t, before, apps.Store().Sessions("A1"))
	for _, hit := range script.hits[1:] {
		assert.NotContains(t, hit, "/A1/")
	}
}

func TestCallerCancellationIgnored(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/apps/A1/sessions", http.StatusOK, `{"id":"s1","app_id":"A1","status":"active"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	apps := NewAppSessions(client)
	_, err := apps.CreateSession(ctx, "A1")

	require.NoError(t, err)
	assert.Len(t, apps.Store().Sessions("A1"), 1)
}

func TestOperationMetrics(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/apps/A1/sessions", http.StatusOK, `{"id":"s1","app_id":"A1","status":"active"}`)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	apps := NewAppSessions(client, WithMetrics(metrics))
	ctx := context.Background()

	_, _ = apps.CreateSession(ctx, "A1")
	_, _ = apps.StopSession(ctx, ref("A1", "nope"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("apps", "create_session", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("apps", "stop_session", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CachedSessions.WithLabelValues("apps")))
}

func TestVersionFencingOption(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/apps/A1/sessions", http.StatusOK, `[{"id":"s1","app_id":"A1","status":"stopped","version":5}]`)
	script.set("POST /api/apps/A1/sessions/s1/resume", http.StatusOK, `{"id":"s1","app_id":"A1","status":"active","version":4}`)

	apps := NewAppSessions(client, WithVersionFencing(true))
	ctx := context.Background()
	_, err := apps.FetchSessions(ctx, "A1")
	require.NoError(t, err)

	_, err = apps.ResumeSession(ctx, ref("A1", "s1"))
	require.NoError(t, err)

	got, ok := apps.Store().Session("A1", "s1")
	require.True(t, ok)
	assert.Equal(t, types.StatusStopped, got.Status)
}

func TestWithStoreSharesState(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/apps/A1/sessions", http.StatusOK, `{"id":"s1","app_id":"A1","status":"active"}`)

	store := session.NewStore(kind.Apps)
	apps := NewAppSessions(client, WithStore(store))
	_, err := apps.CreateSession(context.Background(), "A1")
	require.NoError(t, err)

	assert.Same(t, store, apps.Store())
	assert.Len(t, store.Sessions("A1"), 1)

	notebooks := NewNotebookSessions(client, nil, WithStore(store))
	assert.NotSame(t, store, notebooks.Store(), "a store of another kind is not adopted")
}

func TestSaveWorkspace(t *testing.T) {
	script, client := newServer(t)
	script.set("GET /api/notebooks/n1/sessions", http.StatusOK, `[{"id":"s1","notebook_id":"n1","status":"active"}]`)

	saver := new(wbtest.MockSaver)
	saver.On("Save", mock.Anything, types.ResourceID("n1"), types.SessionID("s1")).
		Return(workspace.SaveResult{Message: "Workspace saved"}, nil).Once()

	notebooks := NewNotebookSessions(client, saver)
	ctx := context.Background()
	_, err := notebooks.FetchSessions(ctx, "n1")
	require.NoError(t, err)
	before := notebooks.Store().Snapshot().Sessions

	message, err := notebooks.SaveWorkspace(ctx, ref("n1", "s1"))

	require.NoError(t, err)
	assert.Equal(t, "Workspace saved", message)
	assert.Equal(t, "Workspace saved", notebooks.Store().Notice())
	assert.Empty(t, notebooks.Store().Err())
	assert.Equal(t, before, notebooks.Store().Snapshot().Sessions)
	saver.AssertExpectations(t)
}

func TestSaveWorkspaceFailure(t *testing.T) {
	_, client := newServer(t)

	saver := new(wbtest.MockSaver)
	saver.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Return(workspace.SaveResult{}, errors.New("disk full"))

	notebooks := NewNotebookSessions(client, saver)
	_, err := notebooks.SaveWorkspace(context.Background(), ref("n1", "s1"))

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, types.SessionID("s1"), opErr.SessionID)
	assert.Equal(t, "Failed to save notebook workspace", notebooks.Store().Err())
	assert.Empty(t, notebooks.Store().Notice())
}

func TestSaveWorkspaceOverHTTP(t *testing.T) {
	script, client := newServer(t)
	script.set("POST /api/notebooks/n1/sessions/s1/save", http.StatusOK, `{"message":"Saved 3 files"}`)

	notebooks := NewNotebookSessions(client, nil)
	message, err := notebooks.SaveWorkspace(context.Background(), ref("n1", "s1"))

	require.NoError(t, err)
	assert.Equal(t, "Saved 3 files", message)
}
