// Package cli provides the interactive wordmaster terminal client.
//
// It wires configuration, the local store, the server transport and the
// services into a REPL that keeps working offline. Typical flow: resume or
// create a session, study with review, game and quiz commands, and run
// sync whenever the server is reachable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
