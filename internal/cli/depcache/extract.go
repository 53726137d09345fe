package depcache

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"debpack/pkg/buildconf"
)

type archiveEntry struct {
	path string
	body []byte
	mode os.FileMode
}

// expand materializes a decoded dependency at target: zstd artifacts
// become a single file, tar archives are unpacked into a directory.
func expand(content []byte, dep buildconf.Dependency, target string) error {
	switch dep.Encoding {
	case buildconf.EncodingZstd:
		decoded, err := decodeZstd(content)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, decoded, 0o644)
	case buildconf.EncodingTarGzip, buildconf.EncodingTarXz:
		entries, err := readArchiveEntries(content, dep.Encoding)
		if err != nil {
			return err
		}
		return writeArchiveEntries(target, entries)
	default:
		return fmt.Errorf("encoding %q cannot be expanded", dep.Encoding)
	}
}

func decodeZstd(content []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(content, nil)
}

func readArchiveEntries(content []byte, encoding string) ([]archiveEntry, error) {
	reader, closer, err := openArchiveReader(content, encoding)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}

	tarReader := tar.NewReader(reader)
	var entries []archiveEntry
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.FileInfo().Mode().IsRegular() {
			continue
		}

		entryPath, err := normalizeEntryName(header.Name)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archiveEntry{
			path: entryPath,
			body: body,
			mode: header.FileInfo().Mode().Perm(),
		})
	}
	return entries, nil
}

func openArchiveReader(content []byte, encoding string) (io.Reader, io.Closer, error) {
	base := bytes.NewReader(content)
	switch encoding {
	case buildconf.EncodingTarGzip:
		gzipReader, err := gzip.NewReader(base)
		if err != nil {
			return nil, nil, err
		}
		return gzipReader, gzipReader, nil
	case buildconf.EncodingTarXz:
		xzReader, err := xz.NewReader(base)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported archive encoding %q", encoding)
	}
}

func normalizeEntryName(value string) (string, error) {
	cleaned := filepath.Clean(value)
	cleaned = strings.TrimPrefix(cleaned, "./")
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("invalid archive entry path %q", value)
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes root: %q", value)
	}
	return filepath.ToSlash(cleaned), nil
}

func writeArchiveEntries(root string, entries []archiveEntry) error {
	for _, entry := range entries {
		target, err := resolveEntryTarget(root, entry.path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		mode := entry.mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, entry.body, mode); err != nil {
			return err
		}
	}
	return nil
}

func resolveEntryTarget(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	cleanTarget := filepath.Clean(target)
	if cleanTarget != cleanRoot && !strings.HasPrefix(cleanTarget, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes target root: %q", rel)
	}
	return target, nil
}
