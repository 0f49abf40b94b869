// Package validate checks user-supplied names, descriptions and ids before
// they reach a URL path or a request body.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength          = 128
	MaxNameLength        = 256
	MaxDescriptionLength = 2048
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// String validates a string field with length and content checks
func String(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ID validates a resource or session id
func ID(id, fieldName string) error {
	if err := String(id, fieldName, 1, MaxIDLength, true); err != nil {
		return err
	}
	if !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// Name validates a resource name
func Name(name string) error {
	return String(name, "name", 1, MaxNameLength, true)
}

// Description validates an optional resource description
func Description(description string) error {
	return String(description, "description", 0, MaxDescriptionLength, false)
}
