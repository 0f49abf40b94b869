// Package main is the entry point for the workbench CLI.
//
// workbench drives the session lifecycle of apps and notebooks against the
// platform API:
//
//	Terminal → workbench → Platform API (/api/apps, /api/notebooks)
//
// It provides:
//   - Resource management (list, get, create, update, delete, deploy)
//   - Session lifecycle (list, create, stop, resume, delete, save)
//   - Workspace files (ls, cat, write, find, push, export)
//   - An in-memory fake platform for local development
//
// Configuration:
//   - Environment variables (WORKBENCH_*)
//   - A TOML file passed with --config
//   - CLI flags (override both)
//
// Usage:
//
//	# Local fake platform, seeded with demo apps
//	workbench fake-server --addr 127.0.0.1:8000
//
//	# Start and stop an app session
//	workbench apps sessions create <app-id>
//	workbench apps sessions stop <app-id> <session-id>
//
// Signals:
//   - SIGINT, SIGTERM: cancel the running command
package main
