// Package id generates the prefixed, sortable identifiers handed out by the
// fake platform API.
//
// IDs are ULIDs with a type prefix (app_*, nb_*, sess_*), which keeps them
// k-sortable by creation time and readable in logs. The real platform owns id
// assignment; the client only generates ids when it plays the server.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

const (
	AppPrefix      = "app"
	NotebookPrefix = "nb"
	SessionPrefix  = "sess"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic entropy
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewAppID generates an app id
func (g *Generator) NewAppID() types.ResourceID {
	return types.ResourceID(g.GenerateWithPrefix(AppPrefix))
}

// NewNotebookID generates a notebook id
func (g *Generator) NewNotebookID() types.ResourceID {
	return types.ResourceID(g.GenerateWithPrefix(NotebookPrefix))
}

// NewSessionID generates a session id
func (g *Generator) NewSessionID() types.SessionID {
	return types.SessionID(g.GenerateWithPrefix(SessionPrefix))
}

// IsValid checks if a string, with or without prefix, carries a valid ULID
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a ULID, stripping a known prefix first
func Parse(id string) (ulid.ULID, error) {
	for _, prefix := range []string{AppPrefix, NotebookPrefix, SessionPrefix} {
		if len(id) > len(prefix)+1 && id[:len(prefix)+1] == prefix+"_" {
			id = id[len(prefix)+1:]
			break
		}
	}
	return ulid.Parse(id)
}

// Timestamp extracts the creation time from an id
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
