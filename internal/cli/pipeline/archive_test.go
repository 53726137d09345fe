package pipeline

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

// writeTarGz builds a gzip tarball at path with the given entries,
// mirroring the single top-level directory layout of a dist archive.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	writeTarEntries(t, gzWriter, files)
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
}

func writeTarXz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	xzWriter, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	writeTarEntries(t, xzWriter, files)
	if err := xzWriter.Close(); err != nil {
		t.Fatalf("close xz: %v", err)
	}
}

func writeTarEntries(t *testing.T, w interface{ Write([]byte) (int, error) }, files map[string]string) {
	t.Helper()
	tarWriter := tar.NewWriter(w)
	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if strings.HasSuffix(name, "/") {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if err := tarWriter.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if hdr.Typeflag != tar.TypeDir {
			if _, err := tarWriter.Write([]byte(content)); err != nil {
				t.Fatalf("tar body %s: %v", name, err)
			}
		}
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
}

func TestExtractTarballStripsTopComponent(t *testing.T) {
	temp := t.TempDir()
	archive := filepath.Join(temp, "proj-1.2.3.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"proj-1.2.3/":               "",
		"proj-1.2.3/configure":      "#!/bin/sh\n",
		"proj-1.2.3/src/":           "",
		"proj-1.2.3/src/main.c":     "int main(void) { return 0; }\n",
		"proj-1.2.3/docs/README.md": "readme\n",
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err != nil {
		t.Fatalf("extractTarball failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dest, "src", "main.c"))
	if err != nil {
		t.Fatalf("stripped file missing: %v", err)
	}
	if !strings.Contains(string(b), "int main") {
		t.Fatalf("unexpected content %q", string(b))
	}
	if _, err := os.Stat(filepath.Join(dest, "proj-1.2.3")); !os.IsNotExist(err) {
		t.Fatalf("top-level component not stripped, stat err=%v", err)
	}
}

func TestExtractTarballReadsXz(t *testing.T) {
	temp := t.TempDir()
	archive := filepath.Join(temp, "proj-1.2.3.tar.xz")
	writeTarXz(t, archive, map[string]string{
		"proj-1.2.3/configure": "#!/bin/sh\n",
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err != nil {
		t.Fatalf("extractTarball failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "configure")); err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
}

// tarEntry describes one archive member; a non-empty linkname makes it
// a symlink. Entries are written in slice order.
type tarEntry struct {
	name     string
	linkname string
	body     string
}

func writeTarGzOrdered(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	tarWriter := tar.NewWriter(gzWriter)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body))}
		if e.linkname != "" {
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkname
			hdr.Mode = 0o777
			hdr.Size = 0
		}
		if err := tarWriter.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.name, err)
		}
		if hdr.Typeflag != tar.TypeSymlink {
			if _, err := tarWriter.Write([]byte(e.body)); err != nil {
				t.Fatalf("tar body %s: %v", e.name, err)
			}
		}
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
}

func TestExtractTarballRejectsEscapingEntries(t *testing.T) {
	temp := t.TempDir()
	archive := filepath.Join(temp, "evil.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"proj-1.2.3/../../evil.txt": "gotcha",
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err == nil {
		t.Fatalf("expected escaping entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(temp, "evil.txt")); !os.IsNotExist(err) {
		t.Fatalf("escaping entry was written, stat err=%v", err)
	}
}

func TestExtractTarballRejectsSymlinkPointingOutsideRoot(t *testing.T) {
	temp := t.TempDir()
	outside := filepath.Join(temp, "outside")
	if err := os.Mkdir(outside, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	archive := filepath.Join(temp, "evil.tar.gz")
	writeTarGzOrdered(t, archive, []tarEntry{
		{name: "proj-1.2.3/link", linkname: "../../outside"},
		{name: "proj-1.2.3/link/evil.txt", body: "gotcha"},
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err == nil {
		t.Fatalf("expected symlink escape to be rejected")
	}
	if _, err := os.Stat(filepath.Join(outside, "evil.txt")); !os.IsNotExist(err) {
		t.Fatalf("file escaped extraction root via symlink, stat err=%v", err)
	}
}

func TestExtractTarballRejectsAbsoluteSymlinkTarget(t *testing.T) {
	temp := t.TempDir()
	archive := filepath.Join(temp, "evil.tar.gz")
	writeTarGzOrdered(t, archive, []tarEntry{
		{name: "proj-1.2.3/link", linkname: "/etc"},
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err == nil {
		t.Fatalf("expected absolute symlink target to be rejected")
	}
	if _, err := os.Lstat(filepath.Join(dest, "link")); !os.IsNotExist(err) {
		t.Fatalf("symlink was created, lstat err=%v", err)
	}
}

func TestExtractTarballKeepsInRootSymlinks(t *testing.T) {
	temp := t.TempDir()
	archive := filepath.Join(temp, "proj-1.2.3.tar.gz")
	writeTarGzOrdered(t, archive, []tarEntry{
		{name: "proj-1.2.3/src/main.c", body: "int main(void) { return 0; }\n"},
		{name: "proj-1.2.3/main.c", linkname: "src/main.c"},
	})

	dest := filepath.Join(temp, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := extractTarball(archive, dest); err != nil {
		t.Fatalf("extractTarball failed: %v", err)
	}
	target, err := os.Readlink(filepath.Join(dest, "main.c"))
	if err != nil {
		t.Fatalf("symlink missing: %v", err)
	}
	if target != "src/main.c" {
		t.Fatalf("unexpected link target %q", target)
	}
}
