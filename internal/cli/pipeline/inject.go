package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Debian changelogs want an RFC 2822 date.
const changelogDateFormat = time.RFC1123Z

// DistroResolver reports the distribution to target when none was
// requested explicitly. It is an interface so tests do not depend on
// the identity of the host they run on.
type DistroResolver interface {
	Resolve() (string, error)
}

// LSBDistroResolver queries the host's lsb_release identity. A host in
// the Debian family targets "unstable"; anything else targets its own
// release codename.
type LSBDistroResolver struct {
	run commandRunner
}

func NewLSBDistroResolver(run commandRunner) *LSBDistroResolver {
	return &LSBDistroResolver{run: run}
}

func (r *LSBDistroResolver) Resolve() (string, error) {
	distributor, err := r.run.Output(HostDir, "lsb_release", "-si")
	if err != nil {
		return "", err
	}
	if distributor == "Debian" {
		return "unstable", nil
	}
	return r.run.Output(HostDir, "lsb_release", "-sc")
}

// Injector materializes the versioned source directory: the extracted
// distribution archive overlaid with the packaging metadata directory
// and a rendered changelog.
type Injector struct {
	opts   Options
	work   *Workdir
	distro DistroResolver
	now    func() time.Time
	log    *slog.Logger
}

func NewInjector(opts Options, work *Workdir, distro DistroResolver, now func() time.Time, log *slog.Logger) *Injector {
	return &Injector{opts: opts, work: work, distro: distro, now: now, log: log}
}

// Inject returns the absolute path of the versioned source directory
// the build tool will run in.
func (i *Injector) Inject(src *Source) (string, error) {
	dir, err := i.inject(src)
	if err != nil {
		return "", &PackagingError{Err: err}
	}
	return dir, nil
}

func (i *Injector) inject(src *Source) (string, error) {
	dir := i.work.Path(i.opts.Project + "-" + src.Version + "-" + src.Commit)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", err
	}
	if err := extractTarball(i.work.Path(src.OrigName), dir); err != nil {
		return "", err
	}

	info, err := os.Stat(i.opts.MetadataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("packaging metadata directory %q is missing", i.opts.MetadataDir)
		}
		return "", fmt.Errorf("packaging metadata directory %q: %w", i.opts.MetadataDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("packaging metadata directory %q is not a directory", i.opts.MetadataDir)
	}
	if err := copyDir(i.opts.MetadataDir, filepath.Join(dir, "debian")); err != nil {
		return "", err
	}

	if err := i.renderChangelog(filepath.Join(dir, "debian", "changelog"), src); err != nil {
		return "", err
	}
	return dir, nil
}

func (i *Injector) renderChangelog(path string, src *Source) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	distro := i.opts.Distro
	if distro == "" {
		distro, err = i.distro.Resolve()
		if err != nil {
			return fmt.Errorf("resolve target distribution: %w", err)
		}
	}
	i.log.Info("targeting distribution", "distro", distro)

	rendered, err := renderTemplate(string(raw), map[string]string{
		"version": src.Version + "-" + src.Commit,
		"distro":  distro,
		"commit":  src.Commit,
		"date":    i.now().Format(changelogDateFormat),
	})
	if err != nil {
		return fmt.Errorf("changelog: %w", err)
	}
	return os.WriteFile(path, []byte(rendered), 0o644)
}
