package shared

// Process exit codes reported by the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitBuildFailed = 3
	ExitDepsFailed  = 4
)
