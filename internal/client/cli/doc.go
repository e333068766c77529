// Package cli provides the interactive lead grid command-line client.
//
// It wires the session, the paged row model, lead mutations and exports
// into a REPL that keeps working from cached pages while the backend is
// unreachable. Typical flow: bootstrap the session from the saved cookie,
// start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Page through leads, filter by column, refresh
//   - Create, edit and delete leads
//   - Export the filtered grid as CSV to a file or an S3 bucket
//   - Print request and cache counters
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
