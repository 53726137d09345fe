package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"debpack/internal/cli/pipeline"
	"debpack/internal/cli/shared"
)

func newBuildCmd(ctx *appContext) *cobra.Command {
	var (
		directory  string
		output     string
		sourceOnly bool
		makeJobs   string
		distro     string
	)
	cmd := &cobra.Command{
		Use:   "build <git-source> [commit]",
		Short: "Clone a project and build its Debian package",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rootDir, err := loadConfigAndRoot(ctx.configPath)
			if err != nil {
				return err
			}

			commit := ""
			if len(args) == 2 {
				commit = args[1]
			}
			metadataDir := cfg.Project.MetadataDir
			if !filepath.IsAbs(metadataDir) {
				metadataDir = filepath.Join(rootDir, metadataDir)
			}

			opts := pipeline.Options{
				Source:      args[0],
				Commit:      commit,
				Project:     cfg.Project.Name,
				MetadataDir: metadataDir,
				WorkDir:     directory,
				OutputDir:   output,
				SourceOnly:  sourceOnly,
				MakeJobs:    makeJobs,
				Distro:      distro,
				Verbose:     ctx.verbose,
			}
			p, err := pipeline.New(opts, ctx.logger())
			if err != nil {
				return newExitCodeError(shared.ExitConfigError, err)
			}
			if err := p.Run(); err != nil {
				return newExitCodeError(shared.ExitBuildFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&directory, "directory", "d", "debian_build", "disposable build directory")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "save the built artifacts here")
	cmd.Flags().BoolVarP(&sourceOnly, "source", "s", false, "build the source package files only")
	cmd.Flags().StringVarP(&makeJobs, "make-jobs", "j", "", "pass -j<N> to debuild for parallel builds")
	cmd.Flags().StringVarP(&distro, "distro-name", "n", "", "distribution to build for (default: detected from the host)")
	return cmd
}
