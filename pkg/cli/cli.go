// Package cli holds process-level plumbing for the httpeek entry
// point: exit codes and signal-aware context construction.
package cli

// Process exit codes. Per-target probe failures are results, not
// process errors, so a batch that runs to completion exits zero no
// matter how many targets were unreachable.
const (
	// ExitOK means the batch ran to completion.
	ExitOK = 0

	// ExitUsage means flag parsing or configuration failed before any
	// probing started.
	ExitUsage = 1

	// ExitInterrupted means the run stopped on SIGINT/SIGTERM,
	// following the 128+signal shell convention.
	ExitInterrupted = 130
)
