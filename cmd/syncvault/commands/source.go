package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	vaulterrors "github.com/syncvault/syncvault/internal/errors"
)

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceListCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage backup sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add directories or files to back up",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return vaulterrors.Wrapf(err, "resolving %s", arg)
			}
			if _, err := os.Stat(path); err != nil {
				return vaulterrors.NewUserError(
					vaulterrors.Wrapf(err, "source %s", path),
					"check the path exists before adding it")
			}
			if slices.Contains(cfg.Sources, path) {
				logger.Warn("source already configured", "path", path)
				continue
			}
			cfg.Sources = append(cfg.Sources, path)
			if !quiet {
				fmt.Printf("Added source: %s\n", path)
			}
		}

		return saveConfig(cfg)
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:     "remove <path>...",
	Aliases: []string{"rm"},
	Short:   "Remove configured sources",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return vaulterrors.Wrapf(err, "resolving %s", arg)
			}
			before := len(cfg.Sources)
			cfg.Sources = slices.DeleteFunc(cfg.Sources, func(s string) bool {
				return s == path
			})
			if len(cfg.Sources) == before {
				logger.Warn("source not configured", "path", path)
				continue
			}
			if !quiet {
				fmt.Printf("Removed source: %s\n", path)
			}
		}

		return saveConfig(cfg)
	},
}

var sourceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured sources",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(cfg.Sources) == 0 {
			fmt.Println("No sources configured.")
			return nil
		}
		for _, src := range cfg.Sources {
			fmt.Println(src)
		}
		return nil
	},
}
