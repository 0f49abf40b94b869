package fakeapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Handlers serves the platform endpoints of one resource kind
type Handlers struct {
	platform *Platform
	kind     kind.Kind
}

// NewHandlers creates the handler set for k
func NewHandlers(platform *Platform, k kind.Kind) *Handlers {
	return &Handlers{platform: platform, kind: k}
}

// wireSession carries the kind-specific owner field the platform emits
type wireSession struct {
	types.Session
	ResourceID types.ResourceID `json:"resource_id,omitempty"`
	AppID      types.ResourceID `json:"app_id,omitempty"`
	NotebookID types.ResourceID `json:"notebook_id,omitempty"`
}

func (h *Handlers) wire(s types.Session) wireSession {
	w := wireSession{Session: s}
	if h.kind == kind.Apps {
		w.AppID = s.ResourceID
	} else {
		w.NotebookID = s.ResourceID
	}
	return w
}

func (h *Handlers) ref(c *gin.Context) types.SessionRef {
	return types.SessionRef{
		ResourceID: types.ResourceID(c.Param("id")),
		SessionID:  types.SessionID(c.Param("sid")),
	}
}

// List handles GET /api/{kind}
func (h *Handlers) List(c *gin.Context) {
	if h.kind == kind.Apps {
		c.JSON(http.StatusOK, h.platform.Apps())
		return
	}
	c.JSON(http.StatusOK, h.platform.Notebooks())
}

// Get handles GET /api/{kind}/{id}
func (h *Handlers) Get(c *gin.Context) {
	h.respondResource(c, http.StatusOK, types.ResourceID(c.Param("id")))
}

// Create handles POST /api/{kind}
func (h *Handlers) Create(c *gin.Context) {
	var req types.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rid := h.platform.Create(h.kind, req)
	h.respondResource(c, http.StatusCreated, rid)
}

// Update handles PUT /api/{kind}/{id}
func (h *Handlers) Update(c *gin.Context) {
	var req types.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rid := types.ResourceID(c.Param("id"))
	if err := h.platform.Update(h.kind, rid, req); err != nil {
		fail(c, err)
		return
	}
	h.respondResource(c, http.StatusOK, rid)
}

// Delete handles DELETE /api/{kind}/{id}
func (h *Handlers) Delete(c *gin.Context) {
	if err := h.platform.Delete(h.kind, types.ResourceID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deploy handles POST /api/apps/{id}/deploy
func (h *Handlers) Deploy(c *gin.Context) {
	app, err := h.platform.Deploy(types.ResourceID(c.Param("id")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ListSessions handles GET /api/{kind}/{id}/sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.platform.Sessions(h.kind, types.ResourceID(c.Param("id")))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]wireSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, h.wire(s))
	}
	c.JSON(http.StatusOK, out)
}

// CreateSession handles POST /api/{kind}/{id}/sessions
func (h *Handlers) CreateSession(c *gin.Context) {
	s, err := h.platform.StartSession(h.kind, types.ResourceID(c.Param("id")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.wire(s))
}

// StopSession handles POST /api/{kind}/{id}/sessions/{sid}/stop
func (h *Handlers) StopSession(c *gin.Context) {
	s, err := h.platform.StopSession(h.kind, h.ref(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wire(s))
}

// ResumeSession handles POST /api/{kind}/{id}/sessions/{sid}/resume
func (h *Handlers) ResumeSession(c *gin.Context) {
	s, err := h.platform.ResumeSession(h.kind, h.ref(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wire(s))
}

// DeleteSession handles DELETE /api/apps/{id}/sessions/{sid}
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.platform.DeleteSession(h.kind, h.ref(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveWorkspace handles POST /api/notebooks/{id}/sessions/{sid}/save
func (h *Handlers) SaveWorkspace(c *gin.Context) {
	message, err := h.platform.SaveWorkspace(h.ref(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ListFiles handles GET .../sessions/{sid}/files?path=
func (h *Handlers) ListFiles(c *gin.Context) {
	entries, err := h.platform.ListFiles(h.kind, h.ref(c), c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ReadFile handles GET .../sessions/{sid}/files/content?path=
func (h *Handlers) ReadFile(c *gin.Context) {
	if c.Query("path") == "" {
		abort(c, http.StatusUnprocessableEntity, "Query parameter path is required")
		return
	}
	file, err := h.platform.ReadFile(h.kind, h.ref(c), c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// WriteFile handles PUT .../sessions/{sid}/files/content
func (h *Handlers) WriteFile(c *gin.Context) {
	var file types.FileContent
	if err := c.ShouldBindJSON(&file); err != nil {
		abort(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if file.Path == "" {
		abort(c, http.StatusUnprocessableEntity, "Path is required")
		return
	}
	if err := h.platform.WriteFile(h.kind, h.ref(c), file); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) respondResource(c *gin.Context, status int, rid types.ResourceID) {
	if h.kind == kind.Apps {
		app, err := h.platform.App(rid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(status, app)
		return
	}
	nb, err := h.platform.Notebook(rid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, nb)
}

func fail(c *gin.Context, err error) {
	var notFound *ErrNotFound
	var conflict *ErrConflict
	switch {
	case errors.As(err, &notFound):
		abort(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, conflict.Error())
	default:
		abort(c, http.StatusInternalServerError, err.Error())
	}
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
