// Package depcache maintains a local cache of upstream dependency
// tarballs: each configured artifact is downloaded once, pinned by a
// content digest, and reused for as long as the cached copy still
// verifies.
package depcache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"debpack/internal/cli/shared"
	"debpack/pkg/buildconf"
)

const (
	outcomeDownloaded = "downloaded"
	outcomeCached     = "cached"
)

// Options controls a cache sync.
type Options struct {
	// RootDir anchors relative extract_to paths.
	RootDir  string
	CacheDir string
	// OnEntry, when set, is called once per processed dependency.
	OnEntry func(Progress)
}

// Progress describes one processed dependency.
type Progress struct {
	Index   int
	Total   int
	Name    string
	Outcome string
}

// Result summarizes a sync.
type Result struct {
	Downloaded int
	Cached     int
}

// Sync brings the cache in line with deps. A failing entry aborts the
// sync; dependency fetches are treated as non-transient, so there is
// no retry.
func Sync(deps []buildconf.Dependency, opts Options) (*Result, error) {
	if opts.CacheDir == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, err
	}

	res := &Result{}
	total := len(deps)
	for index, dep := range deps {
		outcome, content, err := fetch(dep, filepath.Join(opts.CacheDir, dep.Name))
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", dep.Name, err)
		}
		switch outcome {
		case outcomeDownloaded:
			res.Downloaded++
		case outcomeCached:
			res.Cached++
		}

		if dep.ExtractTo != "" {
			target := dep.ExtractTo
			if !filepath.IsAbs(target) {
				target = filepath.Join(opts.RootDir, target)
			}
			if err := expand(content, dep, target); err != nil {
				return nil, fmt.Errorf("dependency %s: %w", dep.Name, err)
			}
		}

		if opts.OnEntry != nil {
			opts.OnEntry(Progress{
				Index:   index + 1,
				Total:   total,
				Name:    dep.Name,
				Outcome: outcome,
			})
		}
	}
	return res, nil
}

func fetch(dep buildconf.Dependency, cachePath string) (string, []byte, error) {
	if cached, err := os.ReadFile(cachePath); err == nil {
		if verifyDigest(cached, dep.Digest) == nil {
			return outcomeCached, cached, nil
		}
		// stale or corrupt cache entry, refetch
	}

	content, err := download(dep)
	if err != nil {
		return "", nil, err
	}
	if err := verifyDigest(content, dep.Digest); err != nil {
		return "", nil, fmt.Errorf("downloaded artifact: %w", err)
	}
	if err := os.WriteFile(cachePath, content, 0o644); err != nil {
		return "", nil, err
	}
	return outcomeDownloaded, content, nil
}

func download(dep buildconf.Dependency) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, dep.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range dep.Headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download failed: %s status=%d", dep.URL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func verifyDigest(content []byte, digest string) error {
	if digest == "" {
		return nil
	}
	algorithm, want, err := buildconf.ParseDigest(digest)
	if err != nil {
		return err
	}
	var got string
	switch algorithm {
	case buildconf.DigestAlgorithmBLAKE3:
		got = shared.BLAKE3Hex(content)
	case buildconf.DigestAlgorithmSHA256:
		got = shared.SHA256Hex(content)
	case buildconf.DigestAlgorithmMD5:
		got = shared.MD5Hex(content)
	}
	if got != want {
		return fmt.Errorf("%s digest mismatch: want %s got %s", algorithm, want, got)
	}
	return nil
}
