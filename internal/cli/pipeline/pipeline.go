// Package pipeline turns a git-hosted autotools project into a Debian
// package. One run clones the project, produces its canonical source
// distribution archive, overlays packaging metadata, invokes debuild
// and collects the resulting artifacts, all inside a disposable
// working directory that is torn down whether the run succeeds or not.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"
)

type workspace interface {
	Setup() error
	Teardown() error
}

type sourceAcquirer interface {
	Acquire() (*Source, error)
}

type metadataInjector interface {
	Inject(*Source) (string, error)
}

type buildInvoker interface {
	Build(dir string) error
}

type artifactCollector interface {
	Collect(*Source) error
}

// Pipeline sequences one packaging run. Stages run strictly one after
// another; the only parallelism is whatever debuild does internally
// with the -j hint. Concurrent runs must use distinct work
// directories; the pipeline does not enforce that.
type Pipeline struct {
	work    workspace
	acquire sourceAcquirer
	inject  metadataInjector
	build   buildInvoker
	collect artifactCollector
	log     *slog.Logger
}

// New wires the production stages for opts.
func New(opts Options, log *slog.Logger) (*Pipeline, error) {
	work, err := NewWorkdir(opts.WorkDir)
	if err != nil {
		return nil, err
	}
	run := NewRunner(work.Root(), opts.Verbose, log)
	return &Pipeline{
		work:    work,
		acquire: NewAcquirer(opts, work, run, log),
		inject:  NewInjector(opts, work, NewLSBDistroResolver(run), time.Now, log),
		build:   NewInvoker(opts, run),
		collect: NewCollector(opts, work, log),
		log:     log,
	}, nil
}

// Run executes the pipeline. A setup failure is immediately fatal and
// skips teardown, since setup mutates nothing once it fails. After a
// successful setup a failing stage is recorded, teardown still runs,
// and teardown's own failure never masks the stage failure.
func (p *Pipeline) Run() error {
	if err := p.work.Setup(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	buildErr := p.runStages()
	if buildErr != nil {
		p.log.Error("build failed", "error", buildErr)
	}

	if err := p.work.Teardown(); err != nil {
		p.log.Error("cleanup failed", "error", err)
		if buildErr == nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	if buildErr == nil {
		p.log.Info("success")
	}
	return buildErr
}

func (p *Pipeline) runStages() error {
	src, err := p.acquire.Acquire()
	if err != nil {
		return err
	}
	dir, err := p.inject.Inject(src)
	if err != nil {
		return err
	}
	if err := p.build.Build(dir); err != nil {
		return err
	}
	return p.collect.Collect(src)
}
