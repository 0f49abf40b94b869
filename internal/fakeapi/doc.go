// Package fakeapi is an in-memory platform API for local development and
// tests. It serves every endpoint the workbench client calls.
//
// Behavior:
//   - Ids are prefixed ULIDs (app_*, nb_*, sess_*)
//   - New sessions are active, listed newest first, with app ports from 8100
//     and control ports from 9100
//   - Stop and resume bump the session version; resume assigns a new container
//   - Deploy assigns a deployment port from 10000
//   - Errors are {"detail": "..."} with a matching status code
//
// Failures can be injected per method and path:
//
//	platform.Inject(http.MethodGet, "/api/apps/a1/sessions", 500, "db down")
package fakeapi
