package defaults

// Exit codes for the CLI.
const (
	ExitSuccess     = 0   // Batch completed; per-target failures do not change this
	ExitUserError   = 1   // Invalid arguments or configuration
	ExitInterrupted = 130 // Terminated by signal
)
