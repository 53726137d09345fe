package buildconf

// Config is the project-level packaging configuration in debpack.yaml.
type Config struct {
	Version      string       `yaml:"version"`
	Project      Project      `yaml:"project"`
	Dependencies []Dependency `yaml:"dependencies"`
	CacheDir     string       `yaml:"cache_dir"`
}

// Project identifies the source package being built.
type Project struct {
	// Name is the Debian source package name; it prefixes every
	// artifact filename.
	Name string `yaml:"name"`
	// MetadataDir is the packaging metadata directory, resolved
	// relative to the config file when not absolute.
	MetadataDir string `yaml:"metadata_dir"`
}

// Dependency defines one cached upstream tarball.
type Dependency struct {
	// Name is the filename the artifact is cached under.
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Digest pins the artifact content as <algorithm>:<hex>.
	Digest string `yaml:"digest"`
	// Encoding is "", zstd, tar+gzip or tar+xz.
	Encoding string `yaml:"encoding"`
	// ExtractTo optionally expands the artifact: a target directory
	// for tar archives, a target file for zstd.
	ExtractTo string            `yaml:"extract_to"`
	Headers   map[string]string `yaml:"headers"`
}
