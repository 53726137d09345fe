package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var workdirCharset = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`)

// Workdir owns the disposable directory tree one pipeline run builds
// in. Every filesystem mutation of the run happens under its root.
type Workdir struct {
	root string
}

// NewWorkdir resolves dir to an absolute path. Some upstream build
// scripts choke on unusual characters in the path to their working
// directory, so the resolved path is restricted to letters, digits,
// '_', '-' and '/'.
func NewWorkdir(dir string) (*Workdir, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if !workdirCharset.MatchString(abs) {
		return nil, &ConfigError{Reason: fmt.Sprintf(
			"build directory %q may only contain letters, digits, '_', '-' and '/'", abs)}
	}
	return &Workdir{root: abs}, nil
}

// Root returns the absolute workdir path.
func (w *Workdir) Root() string {
	return w.root
}

// Path joins elem onto the workdir root.
func (w *Workdir) Path(elem ...string) string {
	return filepath.Join(append([]string{w.root}, elem...)...)
}

// Setup removes any leftover directory at the path and creates a fresh
// empty one.
func (w *Workdir) Setup() error {
	if err := w.Teardown(); err != nil {
		return err
	}
	return os.Mkdir(w.root, 0o755)
}

// Teardown removes the directory tree. A missing directory is not an
// error.
func (w *Workdir) Teardown() error {
	if _, err := os.Stat(w.root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.RemoveAll(w.root)
}
