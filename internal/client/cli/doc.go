// Package cli provides the interactive ProjectKeeper command-line client.
//
// It wires configuration and the HTTP API client into a read-eval-print
// loop. Typical flow: log in, then list, create, show, rename, delete or
// batch-import projects. The access token lives only in process memory.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
