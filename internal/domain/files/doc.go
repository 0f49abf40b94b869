// Package files is the client of the session file-access API, the contract
// the file browser uses to list, read and write files inside a running app
// session.
//
// On top of the three endpoints it offers recursive glob search, pushing a
// local directory into a session and exporting a workspace as a compressed
// tarball. The lifecycle engine never calls this package; it shares only the
// session id space.
package files
