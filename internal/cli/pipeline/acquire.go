package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"debpack/internal/cli/shared"
)

const cloneDir = "git-tmp"

// Source identifies the canonical snapshot one run builds from.
type Source struct {
	// Version is the upstream version parsed from the dist archive
	// filename.
	Version string
	// Commit is the 7-character abbreviated revision.
	Commit string
	// OrigName is <project>_<version>.orig.tar.gz, at the workdir root.
	OrigName string
	// OrigSHA256 is the digest of the orig tarball, recorded so the
	// collector can verify it ships the same bytes.
	OrigSHA256 string
}

// Acquirer clones the project, regenerates its build scaffolding and
// produces the canonical source distribution archive.
type Acquirer struct {
	opts Options
	work *Workdir
	run  commandRunner
	log  *slog.Logger
}

func NewAcquirer(opts Options, work *Workdir, run commandRunner, log *slog.Logger) *Acquirer {
	return &Acquirer{opts: opts, work: work, run: run, log: log}
}

// Acquire runs the acquisition sequence and derives the version and
// revision identifiers. Any sub-step failure aborts the stage.
func (a *Acquirer) Acquire() (*Source, error) {
	src, err := a.acquire()
	if err != nil {
		return nil, &AcquireError{Err: err}
	}
	return src, nil
}

func (a *Acquirer) acquire() (*Source, error) {
	clone := a.work.Path(cloneDir)

	if err := a.run.Run(HostDir, "git", "clone", a.opts.Source, clone); err != nil {
		return nil, err
	}
	if a.opts.Commit != "" {
		if err := a.run.Run(clone, "git", "checkout", a.opts.Commit); err != nil {
			return nil, err
		}
	}
	steps := [][]string{
		{"git", "submodule", "init"},
		{"git", "submodule", "update"},
		{"autoreconf", "-vfi"},
		{"./configure"},
		{"make", "dist"},
	}
	for _, step := range steps {
		if err := a.run.Run(clone, step[0], step[1:]...); err != nil {
			return nil, err
		}
	}

	distPath, err := globOne(filepath.Join(clone, a.opts.Project+"-*.tar.gz"))
	if err != nil {
		return nil, err
	}
	distName := filepath.Base(distPath)
	version := strings.TrimSuffix(strings.TrimPrefix(distName, a.opts.Project+"-"), ".tar.gz")
	if version == "" {
		return nil, fmt.Errorf("cannot derive a version from dist archive %q", distName)
	}
	a.log.Info("derived upstream version", "version", version)

	line, err := a.run.Output(clone, "git", "log", "--oneline", "-1")
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) != 7 {
		return nil, fmt.Errorf("unexpected revision log summary %q: want a 7-character abbreviated hash", line)
	}
	commit := fields[0]
	a.log.Info("building revision", "commit", commit)

	origName := a.opts.Project + "_" + version + ".orig.tar.gz"
	if err := copyFile(distPath, a.work.Path(origName)); err != nil {
		return nil, err
	}
	digest, err := shared.SHA256File(a.work.Path(origName))
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(clone); err != nil {
		return nil, err
	}
	a.log.Info("orig tarball ready", "name", origName)

	return &Source{
		Version:    version,
		Commit:     commit,
		OrigName:   origName,
		OrigSHA256: digest,
	}, nil
}
