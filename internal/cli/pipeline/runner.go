package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// HostDir selects the process working directory instead of the
// pipeline workdir, e.g. for the initial clone which must run outside
// it.
const HostDir = "."

// commandRunner is what pipeline stages need from Runner. Tests
// substitute fakes.
type commandRunner interface {
	Run(dir, name string, args ...string) error
	Output(dir, name string, args ...string) (string, error)
}

// Runner executes external build tools as blocking child processes.
// Child output is discarded unless verbose. Stdin is inherited so an
// operator interrupt reaches the child rather than being swallowed.
type Runner struct {
	workdir string
	verbose bool
	log     *slog.Logger
}

func NewRunner(workdir string, verbose bool, log *slog.Logger) *Runner {
	return &Runner{workdir: workdir, verbose: verbose, log: log}
}

// Run executes name with args in dir. An empty dir means the pipeline
// workdir. A nonzero exit becomes a ToolError.
func (r *Runner) Run(dir, name string, args ...string) error {
	cmd := r.command(dir, name, args...)
	if r.verbose {
		cmd.Stdout = os.Stdout
	}
	return r.finish(cmd, cmd.Run())
}

// outputLineLimit caps the bytes kept from a command's first output
// line. Anything this tool captures is a short identifier; a command
// spewing an endless line must not grow the capture with it.
const outputLineLimit = 4096

// Output executes the command and returns the first line of its
// standard output, trimmed of surrounding whitespace and capped at
// outputLineLimit bytes. Only suitable for small outputs such as a
// one-line log summary; the rest of the stream is drained and dropped.
func (r *Runner) Output(dir, name string, args ...string) (string, error) {
	cmd := r.command(dir, name, args...)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", name, err)
	}
	line, readErr := bufio.NewReader(io.LimitReader(pipe, outputLineLimit)).ReadString('\n')
	_, _ = io.Copy(io.Discard, pipe)
	if err := r.finish(cmd, cmd.Wait()); err != nil {
		return "", err
	}
	if readErr != nil && readErr != io.EOF {
		return "", readErr
	}
	return strings.TrimSpace(line), nil
}

func (r *Runner) command(dir, name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	if dir == "" {
		dir = r.workdir
	}
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	if r.verbose {
		cmd.Stderr = os.Stderr
	}
	r.log.Debug("executing", "command", name, "args", args, "dir", dir)
	return cmd
}

func (r *Runner) finish(cmd *exec.Cmd, err error) error {
	if err == nil {
		return nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return &ToolError{Command: cmd.Args, ExitCode: exit.ExitCode()}
	}
	return fmt.Errorf("run %s: %w", cmd.Args[0], err)
}
