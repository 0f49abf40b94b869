package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Class separates failures that never reached a response from non-2xx replies
type Class int

const (
	// ClassTransport covers network failures, an open breaker, rate-limit
	// waits and undecodable success bodies.
	ClassTransport Class = iota + 1
	// ClassStatus covers any non-2xx response.
	ClassStatus
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case ClassTransport:
		return "transport"
	case ClassStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Do for every failed call
type Error struct {
	Class      Class
	Method     string
	Path       string
	StatusCode int
	// Message is the server payload message, or the HTTP status text when the
	// payload could not be parsed. Empty for transport failures.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Class == ClassStatus {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying later could succeed
func (e *Error) Temporary() bool {
	return e.Class == ClassTransport || e.StatusCode >= http.StatusInternalServerError
}

// ServerMessage extracts the user-facing message of a status error. It
// returns "" for transport failures and non-transport errors.
func ServerMessage(err error) string {
	var terr *Error
	if errors.As(err, &terr) && terr.Class == ClassStatus {
		return terr.Message
	}
	return ""
}

func statusError(method, path string, code int, body []byte) *Error {
	message := payloadMessage(body)
	if message == "" {
		message = http.StatusText(code)
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", code)
	}
	return &Error{
		Class:      ClassStatus,
		Method:     method,
		Path:       path,
		StatusCode: code,
		Message:    message,
	}
}

// payloadMessage reads detail, message or error from a JSON error body.
// FastAPI-style validation lists under detail are flattened.
func payloadMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	var s string
	if err := sonic.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := sonic.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
