package fakeapi

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

const (
	firstAppPort        = 8100
	firstControlPort    = 9100
	firstDeploymentPort = 10000
)

// ErrNotFound is returned for unknown resources, sessions and files
type ErrNotFound struct {
	What string
}

func (e *ErrNotFound) Error() string {
	return e.What + " not found"
}

// ErrConflict is returned when a session is in the wrong state
type ErrConflict struct {
	Detail string
}

func (e *ErrConflict) Error() string {
	return e.Detail
}

var resourceNames = map[kind.Kind]string{
	kind.Apps:      "App",
	kind.Notebooks: "Notebook",
}

type resource struct {
	id          types.ResourceID
	name        string
	description string
	createdOn   time.Time
	updatedOn   time.Time
	deployPort  *int
	sessions    []*types.Session // newest first
}

type failure struct {
	status int
	detail string
}

// Platform holds the fake server state
type Platform struct {
	mu        sync.Mutex
	ids       *id.Generator
	now       func() time.Time
	resources map[kind.Kind]map[types.ResourceID]*resource
	order     map[kind.Kind][]types.ResourceID // newest first
	files     map[types.SessionID]map[string]string

	nextAppPort     int
	nextControlPort int
	nextDeployPort  int

	failures map[string]failure
}

// PlatformOption configures a Platform
type PlatformOption func(*Platform)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) PlatformOption {
	return func(p *Platform) { p.now = now }
}

// WithIDs overrides the id generator
func WithIDs(g *id.Generator) PlatformOption {
	return func(p *Platform) { p.ids = g }
}

// NewPlatform creates an empty platform
func NewPlatform(opts ...PlatformOption) *Platform {
	p := &Platform{
		ids:             id.Default(),
		now:             time.Now,
		resources:       make(map[kind.Kind]map[types.ResourceID]*resource),
		order:           make(map[kind.Kind][]types.ResourceID),
		files:           make(map[types.SessionID]map[string]string),
		nextAppPort:     firstAppPort,
		nextControlPort: firstControlPort,
		nextDeployPort:  firstDeploymentPort,
		failures:        make(map[string]failure),
	}
	for _, k := range kind.All() {
		p.resources[k] = make(map[types.ResourceID]*resource)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inject makes every request matching method and path fail until cleared
func (p *Platform) Inject(method, urlPath string, status int, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[method+" "+urlPath] = failure{status: status, detail: detail}
}

// ClearFailures removes every injected failure
func (p *Platform) ClearFailures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = make(map[string]failure)
}

func (p *Platform) injected(method, urlPath string) (failure, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.failures[method+" "+urlPath]
	return f, ok
}

// Create adds a resource of kind k
func (p *Platform) Create(k kind.Kind, req types.CreateRequest) types.ResourceID {
	p.mu.Lock()
	defer p.mu.Unlock()

	rid := p.ids.NewAppID()
	if k == kind.Notebooks {
		rid = p.ids.NewNotebookID()
	}
	now := p.now().UTC()
	p.resources[k][rid] = &resource{
		id:          rid,
		name:        req.Name,
		description: req.Description,
		createdOn:   now,
		updatedOn:   now,
	}
	p.order[k] = append([]types.ResourceID{rid}, p.order[k]...)
	return rid
}

// App returns the wire form of an app
func (p *Platform) App(rid types.ResourceID) (types.App, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(kind.Apps, rid)
	if err != nil {
		return types.App{}, err
	}
	return r.app(), nil
}

// Notebook returns the wire form of a notebook
func (p *Platform) Notebook(rid types.ResourceID) (types.Notebook, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(kind.Notebooks, rid)
	if err != nil {
		return types.Notebook{}, err
	}
	return r.notebook(), nil
}

// Apps lists apps newest first
func (p *Platform) Apps() []types.App {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.App, 0, len(p.order[kind.Apps]))
	for _, rid := range p.order[kind.Apps] {
		out = append(out, p.resources[kind.Apps][rid].app())
	}
	return out
}

// Notebooks lists notebooks newest first
func (p *Platform) Notebooks() []types.Notebook {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Notebook, 0, len(p.order[kind.Notebooks]))
	for _, rid := range p.order[kind.Notebooks] {
		out = append(out, p.resources[kind.Notebooks][rid].notebook())
	}
	return out
}

// Update applies the non-nil fields of req
func (p *Platform) Update(k kind.Kind, rid types.ResourceID, req types.UpdateRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(k, rid)
	if err != nil {
		return err
	}
	if req.Name != nil {
		r.name = *req.Name
	}
	if req.Description != nil {
		r.description = *req.Description
	}
	r.updatedOn = p.now().UTC()
	return nil
}

// Delete removes a resource together with its sessions and files
func (p *Platform) Delete(k kind.Kind, rid types.ResourceID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(k, rid)
	if err != nil {
		return err
	}
	for _, s := range r.sessions {
		delete(p.files, s.ID)
	}
	delete(p.resources[k], rid)
	p.order[k] = slices.DeleteFunc(p.order[k], func(id types.ResourceID) bool { return id == rid })
	return nil
}

// Deploy assigns a deployment port to an app; deploying twice keeps the port
func (p *Platform) Deploy(rid types.ResourceID) (types.App, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(kind.Apps, rid)
	if err != nil {
		return types.App{}, err
	}
	if r.deployPort == nil {
		port := p.nextDeployPort
		p.nextDeployPort++
		r.deployPort = &port
	}
	r.updatedOn = p.now().UTC()
	return r.app(), nil
}

// Sessions lists the sessions of a resource newest first
func (p *Platform) Sessions(k kind.Kind, rid types.ResourceID) ([]types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(k, rid)
	if err != nil {
		return nil, err
	}
	out := make([]types.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, nil
}

// StartSession creates an active session. App sessions start with a
// scaffolded workspace.
func (p *Platform) StartSession(k kind.Kind, rid types.ResourceID) (types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(k, rid)
	if err != nil {
		return types.Session{}, err
	}

	s := &types.Session{
		ID:          p.ids.NewSessionID(),
		ResourceID:  rid,
		Version:     1,
		Status:      types.StatusActive,
		CreatedOn:   p.now().UTC(),
		AppPort:     p.nextAppPort,
		ControlPort: p.nextControlPort,
		ContainerID: uuid.NewString(),
	}
	p.nextAppPort++
	p.nextControlPort++
	r.sessions = append([]*types.Session{s}, r.sessions...)

	workspace := make(map[string]string)
	if k == kind.Apps {
		for name, content := range scaffold(r.name) {
			workspace[name] = content
		}
	}
	p.files[s.ID] = workspace
	return *s, nil
}

// StopSession marks a session stopped
func (p *Platform) StopSession(k kind.Kind, ref types.SessionRef) (types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.session(k, ref)
	if err != nil {
		return types.Session{}, err
	}
	s.Status = types.StatusStopped
	s.Version++
	return *s, nil
}

// ResumeSession restarts a session in a new container
func (p *Platform) ResumeSession(k kind.Kind, ref types.SessionRef) (types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.session(k, ref)
	if err != nil {
		return types.Session{}, err
	}
	s.Status = types.StatusActive
	s.Version++
	s.ContainerID = uuid.NewString()
	return *s, nil
}

// DeleteSession removes a session and its files
func (p *Platform) DeleteSession(k kind.Kind, ref types.SessionRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(k, ref.ResourceID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(r.sessions, func(s *types.Session) bool { return s.ID == ref.SessionID })
	if idx < 0 {
		return &ErrNotFound{What: "Session"}
	}
	r.sessions = slices.Delete(r.sessions, idx, idx+1)
	delete(p.files, ref.SessionID)
	return nil
}

// SaveWorkspace reports how many files a notebook session holds
func (p *Platform) SaveWorkspace(ref types.SessionRef) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.session(kind.Notebooks, ref)
	if err != nil {
		return "", err
	}
	if !s.Active() {
		return "", &ErrConflict{Detail: fmt.Sprintf("Session %s is stopped", s.ID)}
	}
	return fmt.Sprintf("Workspace saved (%d files)", len(p.files[s.ID])), nil
}

// ListFiles lists the direct children of dir in a session workspace
func (p *Platform) ListFiles(k kind.Kind, ref types.SessionRef, dir string) ([]types.FileEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.session(k, ref); err != nil {
		return nil, err
	}

	dir = cleanPath(dir)
	prefix := strings.TrimSuffix(dir, "/") + "/"
	seen := make(map[string]bool)
	entries := []types.FileEntry{}
	for name, content := range p.files[ref.SessionID] {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if child, _, nested := strings.Cut(rest, "/"); nested {
			if !seen[child] {
				seen[child] = true
				entries = append(entries, types.FileEntry{Name: child, Path: prefix + child, IsDir: true})
			}
			continue
		}
		entries = append(entries, types.FileEntry{Name: rest, Path: name, Size: int64(len(content))})
	}
	slices.SortFunc(entries, func(a, b types.FileEntry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

// ReadFile returns the content of one workspace file
func (p *Platform) ReadFile(k kind.Kind, ref types.SessionRef, name string) (types.FileContent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.session(k, ref); err != nil {
		return types.FileContent{}, err
	}
	name = cleanPath(name)
	content, ok := p.files[ref.SessionID][name]
	if !ok {
		return types.FileContent{}, &ErrNotFound{What: "File"}
	}
	return types.FileContent{Path: name, Content: content}, nil
}

// WriteFile creates or replaces one workspace file
func (p *Platform) WriteFile(k kind.Kind, ref types.SessionRef, file types.FileContent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.session(k, ref); err != nil {
		return err
	}
	p.files[ref.SessionID][cleanPath(file.Path)] = file.Content
	return nil
}

// lookup must be called with mu held
func (p *Platform) lookup(k kind.Kind, rid types.ResourceID) (*resource, error) {
	r, ok := p.resources[k][rid]
	if !ok {
		return nil, &ErrNotFound{What: resourceNames[k]}
	}
	return r, nil
}

// session must be called with mu held
func (p *Platform) session(k kind.Kind, ref types.SessionRef) (*types.Session, error) {
	r, err := p.lookup(k, ref.ResourceID)
	if err != nil {
		return nil, err
	}
	for _, s := range r.sessions {
		if s.ID == ref.SessionID {
			return s, nil
		}
	}
	return nil, &ErrNotFound{What: "Session"}
}

func (r *resource) app() types.App {
	app := types.App{
		ID:          r.id,
		Name:        r.name,
		Description: r.description,
		CreatedOn:   r.createdOn,
		UpdatedOn:   r.updatedOn,
	}
	if r.deployPort != nil {
		port := *r.deployPort
		app.DeploymentPort = &port
	}
	return app
}

func (r *resource) notebook() types.Notebook {
	return types.Notebook{
		ID:          r.id,
		Name:        r.name,
		Description: r.description,
		CreatedOn:   r.createdOn,
		UpdatedOn:   r.updatedOn,
	}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
