package pipeline

import (
	"fmt"
	"strings"
)

// ConfigError reports invalid options, detected before any filesystem
// mutation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// ToolError reports an external command exiting nonzero.
type ToolError struct {
	Command  []string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("command %q exited %d", strings.Join(e.Command, " "), e.ExitCode)
}

// AcquireError wraps a failure while producing the source snapshot.
type AcquireError struct {
	Err error
}

func (e *AcquireError) Error() string {
	return "acquire source: " + e.Err.Error()
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// PackagingError wraps a metadata or template failure.
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string {
	return "inject packaging metadata: " + e.Err.Error()
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// BuildError wraps a failure of the packaging build tool.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return "build package: " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ArtifactError reports a filename pattern that did not match exactly
// one file.
type ArtifactError struct {
	Pattern string
	Matches []string
}

func (e *ArtifactError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no file matches %q", e.Pattern)
	}
	return fmt.Sprintf("%d files match %q (stale files from a previous run?): %s",
		len(e.Matches), e.Pattern, strings.Join(e.Matches, ", "))
}
