package fakeapi

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

func setupTestServer(t *testing.T, mutate ...func(*config.FakeServerConfig)) (*Platform, *httptest.Server) {
	t.Helper()
	cfg := config.Default().FakeServer
	for _, m := range mutate {
		m(&cfg)
	}
	platform := NewPlatform()
	srv := httptest.NewServer(NewServer(platform, cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return platform, srv
}

func request(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRegistryEndpoints(t *testing.T) {
	_, srv := setupTestServer(t)

	var created types.App
	status := request(t, srv, http.MethodPost, "/api/apps", `{"name":"demo","description":"first"}`, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, strings.HasPrefix(string(created.ID), "app_"))
	assert.Equal(t, "demo", created.Name)
	assert.False(t, created.Deployed())

	var list []types.App
	request(t, srv, http.MethodGet, "/api/apps", "", &list)
	require.Len(t, list, 1)

	var updated types.App
	status = request(t, srv, http.MethodPut, "/api/apps/"+string(created.ID), `{"description":"second"}`, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "demo", updated.Name)
	assert.Equal(t, "second", updated.Description)

	var deployed types.App
	request(t, srv, http.MethodPost, "/api/apps/"+string(created.ID)+"/deploy", "", &deployed)
	require.NotNil(t, deployed.DeploymentPort)
	assert.Equal(t, firstDeploymentPort, *deployed.DeploymentPort)

	status = request(t, srv, http.MethodDelete, "/api/apps/"+string(created.ID), "", nil)
	assert.Equal(t, http.StatusNoContent, status)

	var missing map[string]string
	status = request(t, srv, http.MethodGet, "/api/apps/"+string(created.ID), "", &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "App not found", missing["detail"])
}

func TestCreateValidation(t *testing.T) {
	_, srv := setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"missing name", `{"description":"x"}`},
		{"blank name", `{"name":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload map[string]string
			status := request(t, srv, http.MethodPost, "/api/notebooks", tt.body, &payload)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.NotEmpty(t, payload["detail"])
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	platform, srv := setupTestServer(t)
	rid := platform.Create("apps", types.CreateRequest{Name: "demo"})
	base := "/api/apps/" + string(rid) + "/sessions"

	var raw map[string]any
	status := request(t, srv, http.MethodPost, base, "", &raw)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, string(rid), raw["app_id"])
	assert.NotContains(t, raw, "resource_id")
	assert.Equal(t, "active", raw["status"])
	assert.EqualValues(t, firstAppPort, raw["app_port"])
	assert.EqualValues(t, firstControlPort, raw["control_port"])
	sid := raw["id"].(string)

	var stopped types.Session
	request(t, srv, http.MethodPost, base+"/"+sid+"/stop", "", &stopped)
	assert.Equal(t, types.StatusStopped, stopped.Status)
	assert.Equal(t, 2, stopped.Version)
	assert.Equal(t, rid, stopped.ResourceID)

	var resumed types.Session
	request(t, srv, http.MethodPost, base+"/"+sid+"/resume", "", &resumed)
	assert.Equal(t, types.StatusActive, resumed.Status)
	assert.Equal(t, 3, resumed.Version)
	assert.NotEqual(t, stopped.ContainerID, resumed.ContainerID)

	var second types.Session
	request(t, srv, http.MethodPost, base, "", &second)

	var list []types.Session
	request(t, srv, http.MethodGet, base, "", &list)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	status = request(t, srv, http.MethodDelete, base+"/"+sid, "", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = request(t, srv, http.MethodDelete, base+"/"+sid, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestKindSpecificRoutes(t *testing.T) {
	platform, srv := setupTestServer(t)
	nb := platform.Create("notebooks", types.CreateRequest{Name: "nb"})
	s, err := platform.StartSession("notebooks", nb)
	require.NoError(t, err)

	status := request(t, srv, http.MethodDelete, "/api/notebooks/"+string(nb)+"/sessions/"+string(s.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, status, "notebook sessions cannot be deleted")

	status = request(t, srv, http.MethodPost, "/api/notebooks/"+string(nb)+"/deploy", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var saved map[string]string
	status = request(t, srv, http.MethodPost, "/api/notebooks/"+string(nb)+"/sessions/"+string(s.ID)+"/save", "", &saved)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Workspace saved (0 files)", saved["message"])
}

func TestFileEndpoints(t *testing.T) {
	platform, srv := setupTestServer(t)
	rid := platform.Create("apps", types.CreateRequest{Name: "demo"})
	s, err := platform.StartSession("apps", rid)
	require.NoError(t, err)
	base := "/api/apps/" + string(rid) + "/sessions/" + string(s.ID) + "/files"

	status := request(t, srv, http.MethodPut, base+"/content", `{"path":"src/util.py","content":"x = 1\n"}`, nil)
	require.Equal(t, http.StatusNoContent, status)

	var root []types.FileEntry
	request(t, srv, http.MethodGet, base+"?path=/", "", &root)
	names := make([]string, 0, len(root))
	for _, e := range root {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"app.py", "requirements.txt", "src"}, names)
	assert.True(t, root[2].IsDir)

	var nested []types.FileEntry
	request(t, srv, http.MethodGet, base+"?path=/src", "", &nested)
	require.Len(t, nested, 1)
	assert.Equal(t, "/src/util.py", nested[0].Path)
	assert.EqualValues(t, 6, nested[0].Size)

	var file types.FileContent
	status = request(t, srv, http.MethodGet, base+"/content?path=/src/util.py", "", &file)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "x = 1\n", file.Content)

	status = request(t, srv, http.MethodGet, base+"/content?path=/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = request(t, srv, http.MethodGet, base+"/content", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestInjectedFailures(t *testing.T) {
	platform, srv := setupTestServer(t)
	rid := platform.Create("apps", types.CreateRequest{Name: "demo"})
	path := "/api/apps/" + string(rid) + "/sessions"

	platform.Inject(http.MethodGet, path, http.StatusInternalServerError, "db down")

	var payload map[string]string
	status := request(t, srv, http.MethodGet, path, "", &payload)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "db down", payload["detail"])

	status = request(t, srv, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusCreated, status, "other methods are unaffected")

	platform.ClearFailures()
	status = request(t, srv, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimitMiddleware(t *testing.T) {
	_, srv := setupTestServer(t, func(c *config.FakeServerConfig) { c.RateLimitRPS = 1 })

	assert.Equal(t, http.StatusOK, request(t, srv, http.MethodGet, "/health", "", nil))
	assert.Equal(t, http.StatusTooManyRequests, request(t, srv, http.MethodGet, "/health", "", nil))
}

func TestCORSPreflight(t *testing.T) {
	_, srv := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/apps", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(NewPlatform(), config.Default().FakeServer, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
