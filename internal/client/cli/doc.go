// Package cli provides the interactive offlinefeed shell.
//
// NewApp wires configuration, the persistent store, the request router and
// its buckets, the sync server client, the connectivity monitor, the
// coordinator and the prober. App.Run starts the background connectivity
// watcher and blocks in the REPL (see runREPL) until the user exits.
//
// Key features:
//   - Drafts: add, edit, delete, show, list
//   - Preferences and cached posts
//   - Sync of queued changes when online
//   - fetch through the offline router, with JSON posts cached on the way
//   - Diagnostics: audit, persistence probe, cleanup, purge
package cli
