package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionID identifies a compute session
type SessionID string

// String returns the raw id
func (id SessionID) String() string { return string(id) }

// Status represents session lifecycle states
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// UnmarshalText accepts any casing of a known status
func (s *Status) UnmarshalText(text []byte) error {
	switch Status(strings.ToLower(string(text))) {
	case StatusActive:
		*s = StatusActive
	case StatusStopped:
		*s = StatusStopped
	default:
		return fmt.Errorf("unknown session status %q", string(text))
	}
	return nil
}

// Session is a remote compute context bound to exactly one resource
type Session struct {
	ID          SessionID  `json:"id"`
	ResourceID  ResourceID `json:"resource_id"`
	Version     int        `json:"version"`
	Status      Status     `json:"status"`
	CreatedOn   time.Time  `json:"created_on"`
	AppPort     int        `json:"app_port"`
	ControlPort int        `json:"control_port"`
	ContainerID string     `json:"container_id"`
}

// Active reports whether the session is running
func (s Session) Active() bool { return s.Status == StatusActive }

// Ref returns the address of the session
func (s Session) Ref() SessionRef {
	return SessionRef{ResourceID: s.ResourceID, SessionID: s.ID}
}

// UnmarshalJSON falls back to the kind-specific owner field (app_id,
// notebook_id) when resource_id is absent.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var wire struct {
		plain
		AppID      ResourceID `json:"app_id"`
		NotebookID ResourceID `json:"notebook_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*s = Session(wire.plain)
	if s.ResourceID == "" {
		if wire.AppID != "" {
			s.ResourceID = wire.AppID
		} else {
			s.ResourceID = wire.NotebookID
		}
	}
	return nil
}

// SessionRef addresses one session of one resource
type SessionRef struct {
	ResourceID ResourceID
	SessionID  SessionID
}

// String formats the ref as resource/session
func (r SessionRef) String() string {
	return fmt.Sprintf("%s/%s", r.ResourceID, r.SessionID)
}
