package pipeline

// Invoker runs the packaging build tool inside the versioned source
// directory. Builds are always unsigned; signing happens elsewhere in
// the release process.
type Invoker struct {
	opts Options
	run  commandRunner
}

func NewInvoker(opts Options, run commandRunner) *Invoker {
	return &Invoker{opts: opts, run: run}
}

// Build invokes debuild in dir. A nonzero exit is a definitive build
// failure; there is no retry.
func (v *Invoker) Build(dir string) error {
	args := []string{"-uc", "-us"}
	if v.opts.MakeJobs != "" {
		args = append(args, "-j"+v.opts.MakeJobs)
	}
	if v.opts.SourceOnly {
		args = append(args, "-S")
	}
	if err := v.run.Run(dir, "debuild", args...); err != nil {
		return &BuildError{Err: err}
	}
	return nil
}
