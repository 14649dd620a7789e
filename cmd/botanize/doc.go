// Package main hosts the botanize CLI entrypoint and command graph.
//
// Commands answer trait questions against the local species reference,
// identify photos through Pl@ntNet, report the free tier's daily quota, manage
// the observation journal, and run the HTTP API (`botanize serve`). The
// commandContext resolves configuration once and builds the shared components
// so subcommands only deal with flags and rendering.
//
// Every listing command accepts --json for machine-readable output.
package main
