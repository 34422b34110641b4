package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/beacon.scope/internal/config"
	"github.com/banshee-data/beacon.scope/internal/fsutil"
	"github.com/banshee-data/beacon.scope/internal/security"
)

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path.yaml|path.json>",
		Short: "Write a config file holding every default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefaultConfig(fsutil.OSFileSystem{}, args[0], cmd)
		},
	}
}

func writeDefaultConfig(fsys fsutil.FileSystem, path string, cmd *cobra.Command) error {
	if err := security.ValidateExportPath(path); err != nil {
		return err
	}
	if err := config.Defaults().Save(fsys, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
