package pipeline

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// extractTarball unpacks a .tar.gz or .tar.xz archive into dir,
// stripping the archive's single top-level component. Autotools dist
// archives always wrap their contents in one <name>-<version>/
// directory.
func extractTarball(archivePath, dir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, closer, err := openCompressedReader(f, archivePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		rel, err := stripTopComponent(header.Name)
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}
		target, err := secureJoin(dir, rel)
		if err != nil {
			return err
		}
		if err := writeEntry(dir, target, header, tarReader); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(root, target string, header *tar.Header, body io.Reader) error {
	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, header.FileInfo().Mode().Perm())
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := checkResolvedParent(root, target); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, body); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	case tar.TypeSymlink:
		if err := checkLinkTarget(root, target, header.Linkname); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := checkResolvedParent(root, target); err != nil {
			return err
		}
		return os.Symlink(header.Linkname, target)
	default:
		// hard links and special files do not occur in dist archives
		return nil
	}
}

// checkLinkTarget rejects symlink entries whose target, resolved
// against the entry's own directory, leaves the extraction root.
func checkLinkTarget(root, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("archive symlink %q has an absolute target %q", target, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	if err := withinRoot(root, resolved); err != nil {
		return fmt.Errorf("archive symlink %q escapes the extraction root: target %q", target, linkname)
	}
	return nil
}

// checkResolvedParent verifies that the directory an entry is written
// into still resolves inside the extraction root. The lexical entry
// name checks cannot see a previously extracted symlink sitting on the
// path, this one can.
func checkResolvedParent(root, target string) error {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	resolvedParent, err := filepath.EvalSymlinks(filepath.Dir(target))
	if err != nil {
		return err
	}
	if err := withinRoot(resolvedRoot, resolvedParent); err != nil {
		return fmt.Errorf("archive entry %q resolves outside the extraction root", target)
	}
	return nil
}

func openCompressedReader(f *os.File, name string) (io.Reader, io.Closer, error) {
	if strings.HasSuffix(name, ".tar.xz") || strings.HasSuffix(name, ".txz") {
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, nil, nil
	}
	gzipReader, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, err
	}
	return gzipReader, gzipReader, nil
}

// stripTopComponent normalizes a tar entry name and drops its leading
// path element. Entries that are the top-level directory itself map to
// "".
func stripTopComponent(value string) (string, error) {
	cleaned := filepath.ToSlash(filepath.Clean(value))
	cleaned = strings.TrimPrefix(cleaned, "./")
	if cleaned == "." || cleaned == "" {
		return "", nil
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("archive entry path escapes root: %q", value)
	}
	_, rest, _ := strings.Cut(cleaned, "/")
	return rest, nil
}

func secureJoin(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := withinRoot(root, target); err != nil {
		return "", fmt.Errorf("archive entry path escapes target root: %q", rel)
	}
	return target, nil
}

func withinRoot(root, path string) error {
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)
	if cleanPath != cleanRoot && !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside %q", path, root)
	}
	return nil
}
