// Package workspace defines the deployment and workspace-save contracts the
// lifecycle engine and the app registry call into, and their HTTP
// implementation against the platform API.
package workspace
