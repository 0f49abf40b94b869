// Package kind enumerates the resource kinds of the platform and the
// descriptor table every endpoint path is derived from.
package kind

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// Kind discriminates apps from notebooks
type Kind string

const (
	Apps      Kind = "apps"
	Notebooks Kind = "notebooks"
)

// ErrInvalidSegment is returned for ids that cannot form a path segment
var ErrInvalidSegment = errors.New("invalid path segment")

// Capability names an optional lifecycle operation
type Capability string

const (
	CapDeleteSession Capability = "delete_session"
	CapSaveWorkspace Capability = "save_workspace"
	CapDeploy        Capability = "deploy"
)

// Descriptor is the per-kind lookup entry
type Descriptor struct {
	Kind         Kind
	Singular     string
	Capabilities []Capability
}

var table = map[Kind]Descriptor{
	Apps: {
		Kind:         Apps,
		Singular:     "app",
		Capabilities: []Capability{CapDeleteSession, CapDeploy},
	},
	Notebooks: {
		Kind:         Notebooks,
		Singular:     "notebook",
		Capabilities: []Capability{CapSaveWorkspace},
	},
}

// All returns the known kinds in a stable order
func All() []Kind {
	return []Kind{Apps, Notebooks}
}

// Lookup returns the descriptor of a kind
func Lookup(k Kind) (Descriptor, bool) {
	d, ok := table[k]
	return d, ok
}

// MustLookup is Lookup for kinds known at compile time
func MustLookup(k Kind) Descriptor {
	d, ok := table[k]
	if !ok {
		panic(fmt.Sprintf("kind: unknown resource kind %q", k))
	}
	return d
}

// Parse converts user input into a Kind
func Parse(s string) (Kind, error) {
	if _, ok := table[Kind(s)]; ok {
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown resource kind %q (want one of %v)", s, All())
}

// String returns the plural kind name
func (k Kind) String() string { return string(k) }

// Has reports whether the kind supports an optional operation
func (d Descriptor) Has(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// BasePath is /api/{kind}
func (d Descriptor) BasePath() string {
	return "/api/" + string(d.Kind)
}

// ResourcePath is /api/{kind}/{resourceId}
func (d Descriptor) ResourcePath(rid types.ResourceID) (string, error) {
	return join(d.BasePath(), string(rid))
}

// ResourceActionPath is /api/{kind}/{resourceId}/{action}
func (d Descriptor) ResourceActionPath(rid types.ResourceID, action string) (string, error) {
	return join(d.BasePath(), string(rid), action)
}

// SessionsPath is /api/{kind}/{resourceId}/sessions
func (d Descriptor) SessionsPath(rid types.ResourceID) (string, error) {
	return join(d.BasePath(), string(rid), "sessions")
}

// SessionPath is /api/{kind}/{resourceId}/sessions/{sessionId}
func (d Descriptor) SessionPath(ref types.SessionRef) (string, error) {
	return join(d.BasePath(), string(ref.ResourceID), "sessions", string(ref.SessionID))
}

// SessionActionPath is /api/{kind}/{resourceId}/sessions/{sessionId}/{action}
func (d Descriptor) SessionActionPath(ref types.SessionRef, action string) (string, error) {
	return join(d.BasePath(), string(ref.ResourceID), "sessions", string(ref.SessionID), action)
}

// join escapes each segment and appends it to base. Segments are never
// cleaned, so empty, "." and ".." are refused instead of collapsed.
func join(base string, segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString(base)
	for _, seg := range segments {
		switch seg {
		case "", ".", "..":
			return "", fmt.Errorf("%w %q", ErrInvalidSegment, seg)
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String(), nil
}
