// Package logging provides structured logging using uber/zap.
//
// Two presets mirror the rest of the stack:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Both write to stderr; stdout belongs to command output. Components accept a
// *Logger and fall back to NewNop when none is given.
//
// Example Usage:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	logger.Named("lifecycle").Warn("stop failed", zap.String("session_id", sid))
package logging
