package buildconf

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultConfigVersion = "v1"
	DefaultMetadataDir   = "debian"
	DefaultCacheDir      = "cache"

	EncodingZstd    = "zstd"
	EncodingTarGzip = "tar+gzip"
	EncodingTarXz   = "tar+xz"

	DigestAlgorithmBLAKE3 = "blake3"
	DigestAlgorithmSHA256 = "sha256"
	DigestAlgorithmMD5    = "md5"
)

// Debian source package name charset.
var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.\-]+$`)

func Normalize(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = DefaultConfigVersion
	}
	if cfg.Project.MetadataDir == "" {
		cfg.Project.MetadataDir = DefaultMetadataDir
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.Dependencies == nil {
		cfg.Dependencies = []Dependency{}
	}
}

func Validate(cfg *Config) error {
	if cfg.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if !projectNamePattern.MatchString(cfg.Project.Name) {
		return fmt.Errorf("project.name %q is not a valid source package name", cfg.Project.Name)
	}
	for i, dep := range cfg.Dependencies {
		if dep.Name == "" {
			return fmt.Errorf("dependencies[%d].name is required", i)
		}
		if dep.URL == "" {
			return fmt.Errorf("dependencies[%d].url is required", i)
		}
		switch dep.Encoding {
		case "", EncodingZstd, EncodingTarGzip, EncodingTarXz:
		default:
			return fmt.Errorf("dependencies[%d].encoding %q is unsupported", i, dep.Encoding)
		}
		if dep.ExtractTo != "" && dep.Encoding == "" {
			return fmt.Errorf("dependencies[%d].extract_to requires an encoding", i)
		}
		if dep.Digest != "" {
			if _, _, err := ParseDigest(dep.Digest); err != nil {
				return fmt.Errorf("dependencies[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// ParseDigest splits an <algorithm>:<hex> value and validates both
// halves.
func ParseDigest(value string) (algorithm, digest string, err error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	algorithm, digest, ok := strings.Cut(raw, ":")
	if !ok || algorithm == "" || digest == "" {
		return "", "", fmt.Errorf("invalid digest format %q", value)
	}
	switch algorithm {
	case DigestAlgorithmBLAKE3, DigestAlgorithmSHA256, DigestAlgorithmMD5:
	default:
		return "", "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", "", fmt.Errorf("invalid digest hex %q", value)
	}
	return algorithm, digest, nil
}

// IsRemoteLocation reports whether value names an HTTP(S) resource
// rather than a local file.
func IsRemoteLocation(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
