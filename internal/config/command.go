package config

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" command shared by the tools. Its "init"
// subcommand writes the effective configuration (defaults, then the loaded
// file, then flags) so it can be edited.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the tilesmith configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration as YAML",
		Long: `init writes the configuration currently in effect. Without a path the file
goes to the user config directory, where every tool finds it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Load()
			if err != nil {
				return err
			}

			path := UserConfigPath()
			if len(args) == 1 {
				path = args[0]
				err = cfg.SaveTo(path)
			} else {
				err = cfg.Save()
			}
			if err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path)
			return nil
		},
	})
	return cmd
}
