// Package registry caches the platform's apps and notebooks.
//
// A Registry mirrors /api/{kind} with list, get, create, update and delete.
// The app registry adds Deploy, which publishes an app and stores the
// returned deployment port. Registries never read or write sessions; the
// lifecycle engine depends on them only through resource ids.
//
// Like the session store, each registry keeps one Loading/Err pair for the
// most recent operation.
package registry
