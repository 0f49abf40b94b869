package files

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Client calls the file endpoints of app sessions
type Client struct {
	doer transport.Doer
	desc kind.Descriptor
	log  *logging.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a file client
func New(doer transport.Doer, opts ...Option) *Client {
	c := &Client{
		doer: doer,
		desc: kind.MustLookup(kind.Apps),
		log:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("files")
	return c
}

// List returns the direct children of dir
func (c *Client) List(ctx context.Context, ref types.SessionRef, dir string) ([]types.FileEntry, error) {
	p, err := c.filesPath(ref, "", dir)
	if err != nil {
		return nil, err
	}
	var entries []types.FileEntry
	if err := c.doer.Do(ctx, http.MethodGet, p, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.FileEntry{}
	}
	return entries, nil
}

// Read returns a file with its detected MIME type
func (c *Client) Read(ctx context.Context, ref types.SessionRef, name string) (types.FileContent, error) {
	p, err := c.filesPath(ref, "/content", name)
	if err != nil {
		return types.FileContent{}, err
	}
	var file types.FileContent
	if err := c.doer.Do(ctx, http.MethodGet, p, nil, &file); err != nil {
		return types.FileContent{}, err
	}
	file.MimeType = DetectMimeType(file.Path, []byte(file.Content))
	return file, nil
}

// Write creates or replaces a file
func (c *Client) Write(ctx context.Context, ref types.SessionRef, name, content string) error {
	p, err := c.filesPath(ref, "/content", "")
	if err != nil {
		return err
	}
	body := types.FileContent{Path: name, Content: content}
	if err := c.doer.Do(ctx, http.MethodPut, p, body, nil); err != nil {
		return err
	}
	c.log.Debug("file written",
		zap.String("session", ref.String()),
		zap.String("path", name),
		zap.Int("bytes", len(content)))
	return nil
}

// filesPath is .../sessions/{sid}/files{suffix}, with ?path= when p is set
func (c *Client) filesPath(ref types.SessionRef, suffix, p string) (string, error) {
	endpoint, err := c.desc.SessionActionPath(ref, "files")
	if err != nil {
		return "", err
	}
	endpoint += suffix
	if p == "" {
		return endpoint, nil
	}
	return endpoint + "?" + url.Values{"path": {p}}.Encode(), nil
}

// DetectMimeType sniffs content, falling back to the file extension for
// text formats the sniffer reports as plain text
func DetectMimeType(name string, content []byte) string {
	detected := mimetype.Detect(content)
	if detected.Is("text/plain") || detected.Is("application/octet-stream") {
		if byExt := mimetype.Lookup(extensionMime(path.Ext(name))); byExt != nil {
			return byExt.String()
		}
	}
	return detected.String()
}

// IsText reports whether content sniffs as a text format
func IsText(content []byte) bool {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

var extensionMimes = map[string]string{
	".py":    "text/x-python",
	".json":  "application/json",
	".ipynb": "application/json",
	".csv":   "text/csv",
	".html":  "text/html",
	".js":    "text/javascript",
}

func extensionMime(ext string) string {
	return extensionMimes[strings.ToLower(ext)]
}
