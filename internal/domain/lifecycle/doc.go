// Package lifecycle drives remote session operations for apps and notebooks.
//
// One generic Engine implements fetch, create, stop and resume for any kind.
// Operations that only one kind supports live on wrapper types, so calling
// them on the other kind does not compile:
//
//	apps := lifecycle.NewAppSessions(client)
//	apps.DeleteSession(ctx, ref)
//
//	notebooks := lifecycle.NewNotebookSessions(client, saver)
//	notebooks.SaveWorkspace(ctx, ref)
//
// Every operation moves the kind's session.Store to loading, issues exactly
// one HTTP call and reduces the result into the store. Failures are recorded
// in the store and also returned as *OpError; callers may ignore the error.
//
// Dispatched operations are not cancellable. The caller's context only
// contributes its values; the configured API timeout bounds each call.
package lifecycle
