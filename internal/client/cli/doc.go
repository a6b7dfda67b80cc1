// Package cli provides the interactive accountkeeper command-line client.
//
// It wires configuration, the HTTP API client and a REPL. Passwords are read
// from the terminal without echo. A background watcher probes the server and
// reports when it goes offline or comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
