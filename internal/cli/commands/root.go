package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"debpack/internal/cli/shared"
	"debpack/pkg/buildconf"
)

type appContext struct {
	configPath string
	quiet      bool
	verbose    bool
}

func NewRootCmd(version string) *cobra.Command {
	ctx := &appContext{}
	cmd := &cobra.Command{
		Use:   "debpack",
		Short: "Build Debian packages from a git-hosted autotools project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&ctx.configPath, "config", "debpack.yaml", "path to project config")
	cmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "disable info messages")
	cmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "enable debug messages and child process output")

	cmd.AddCommand(newBuildCmd(ctx))
	cmd.AddCommand(newDepsCmd(ctx))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return mapExitCode(err)
	}
	return shared.ExitOK
}

func mapExitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	return shared.ExitFailure
}

func (ctx *appContext) logger() *slog.Logger {
	level := slog.LevelInfo
	if ctx.verbose {
		level = slog.LevelDebug
	} else if ctx.quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfigAndRoot loads the project config and returns the directory
// relative paths inside it resolve against.
func loadConfigAndRoot(configPath string) (*buildconf.Config, string, error) {
	if buildconf.IsRemoteLocation(configPath) {
		cfg, err := buildconf.Load(configPath)
		if err != nil {
			return nil, "", newExitCodeError(shared.ExitConfigError, err)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		return cfg, cwd, nil
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, "", err
	}
	cfg, err := buildconf.Load(abs)
	if err != nil {
		return nil, "", newExitCodeError(shared.ExitConfigError, err)
	}
	return cfg, filepath.Dir(abs), nil
}

type exitCodeError struct {
	code int
	err  error
}

func newExitCodeError(code int, err error) *exitCodeError {
	return &exitCodeError{code: code, err: err}
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}
