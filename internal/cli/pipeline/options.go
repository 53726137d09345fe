package pipeline

// Options is the resolved configuration for one packaging run. It is
// filled in once by the CLI and read-only afterwards.
type Options struct {
	// Source is the git location of the project to package.
	Source string
	// Commit is an optional revision checked out after cloning.
	Commit string
	// Project is the Debian source package name; it prefixes every
	// artifact filename.
	Project string
	// MetadataDir is the packaging metadata directory overlaid onto the
	// extracted source tree as "debian".
	MetadataDir string
	// WorkDir is the disposable directory the whole run builds in.
	WorkDir string
	// OutputDir receives the collected artifacts.
	OutputDir string
	// SourceOnly builds the source package set instead of a binary deb.
	SourceOnly bool
	// MakeJobs, when set, is passed to debuild as -j<N>.
	MakeJobs string
	// Distro is the target distribution; resolved from the host when
	// empty.
	Distro string
	// Verbose passes child process output through instead of
	// discarding it.
	Verbose bool
}
