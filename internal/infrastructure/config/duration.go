package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that decodes from Go duration strings in both
// environment variables and TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses values such as "250ms" or "30s"
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration in Go syntax
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
