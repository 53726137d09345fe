package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"debpack/internal/cli/depcache"
	"debpack/internal/cli/shared"
)

func newDepsCmd(ctx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Dependency cache helpers",
	}
	cmd.AddCommand(newDepsSyncCmd(ctx))
	return cmd
}

func newDepsSyncCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download and verify dependency tarballs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rootDir, err := loadConfigAndRoot(ctx.configPath)
			if err != nil {
				return err
			}
			log := ctx.logger()

			cacheDir := cfg.CacheDir
			if !filepath.IsAbs(cacheDir) {
				cacheDir = filepath.Join(rootDir, cacheDir)
			}
			res, err := depcache.Sync(cfg.Dependencies, depcache.Options{
				RootDir:  rootDir,
				CacheDir: cacheDir,
				OnEntry: func(p depcache.Progress) {
					log.Info("dependency", "name", p.Name, "outcome", p.Outcome,
						"index", p.Index, "total", p.Total)
				},
			})
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "downloaded=%d cached=%d\n", res.Downloaded, res.Cached)
			}
			if err != nil {
				return newExitCodeError(shared.ExitDepsFailed, err)
			}
			return nil
		},
	}
}
