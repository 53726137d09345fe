package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a debpack.yaml template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeIfNotExists("debpack.yaml", configTemplate(name)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "initialized: debpack.yaml")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "example", "source package name for the template")
	return cmd
}

func writeIfNotExists(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func configTemplate(name string) string {
	return fmt.Sprintf(`version: v1
project:
  name: %s
  metadata_dir: debian
cache_dir: cache
dependencies: []
  # - name: fltk.tar.gz
  #   url: https://example.com/fltk-1.1.10-source.tar.gz
  #   digest: md5:e6378a76ca1ef073bcb092df1ef3ba55
`, name)
}
