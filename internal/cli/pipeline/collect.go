package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"debpack/internal/cli/shared"
)

// Collector locates build outputs by naming convention and copies them
// to the output directory.
type Collector struct {
	opts Options
	work *Workdir
	log  *slog.Logger
}

func NewCollector(opts Options, work *Workdir, log *slog.Logger) *Collector {
	return &Collector{opts: opts, work: work, log: log}
}

func (c *Collector) Collect(src *Source) error {
	prefix := c.opts.Project + "_" + src.Version + "-" + src.Commit
	if c.opts.SourceOnly {
		return c.collectSource(prefix, src)
	}
	return c.collectBinary(prefix)
}

func (c *Collector) collectSource(prefix string, src *Source) error {
	files := []string{
		prefix + ".orig.tar.gz",
		prefix + ".debian.tar.gz",
		prefix + ".dsc",
	}
	for _, name := range files {
		if _, err := os.Stat(c.work.Path(name)); err != nil {
			if os.IsNotExist(err) {
				return &ArtifactError{Pattern: name}
			}
			return err
		}
	}

	// The orig tarball the source build ships must carry the same
	// bytes as the snapshot the run was derived from.
	digest, err := shared.SHA256File(c.work.Path(files[0]))
	if err != nil {
		return err
	}
	if digest != src.OrigSHA256 {
		return fmt.Errorf("orig tarball %s does not match the acquired snapshot", files[0])
	}

	for _, name := range files {
		c.log.Info("copying artifact", "file", name)
		if err := copyFile(c.work.Path(name), filepath.Join(c.opts.OutputDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectBinary(prefix string) error {
	match, err := globOne(c.work.Path(prefix + "_*.deb"))
	if err != nil {
		return err
	}
	name := filepath.Base(match)
	c.log.Info("copying artifact", "file", name)
	return copyFile(match, filepath.Join(c.opts.OutputDir, name))
}
