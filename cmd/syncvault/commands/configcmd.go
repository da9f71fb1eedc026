package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syncvault/syncvault/internal/config"
	"github.com/syncvault/syncvault/internal/editor"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/paths"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configSetCmd)
	configSetCmd.AddCommand(configSetDestinationCmd)
	configSetCmd.AddCommand(configSetTypeCmd)
	configSetCmd.AddCommand(configSetCompressCmd)
	configSetCmd.AddCommand(configSetWorkersCmd)
	configSetCmd.AddCommand(configSetScheduleCmd)

	configSetCompressCmd.Flags().String("format", "", "archive format: zip, tar.gz")
	configSetScheduleCmd.Flags().String("type", "", "schedule type: daily, weekly, monthly")
	configSetScheduleCmd.Flags().String("time", "", "time of day in HH:MM")
	configSetScheduleCmd.Flags().Int("day", -1, "day of week to run (0 = Monday)")
	configSetScheduleCmd.Flags().Int("full-day", -1, "weekday that forces a full backup (0 = Monday)")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify the configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfgFile
		if path == "" {
			path = paths.ConfigFile()
		}
		fmt.Printf("# %s\n", path)

		// History is shown by the history command, not here.
		shown := *cfg
		shown.History = nil
		out, err := yaml.Marshal(&shown)
		if err != nil {
			return vaulterrors.Wrap(err, "rendering configuration")
		}
		fmt.Print(string(out))
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in an editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = paths.ConfigFile()
		}

		// Seed the file with defaults so the editor has something to show.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.Default().Save(path); err != nil {
				return err
			}
		}

		if err := editor.Open(path); err != nil {
			return err
		}

		// Surface mistakes right away instead of at the next run.
		cfg, err := config.Load(path)
		if err != nil {
			return vaulterrors.NewUserError(err, "re-edit with: syncvault config edit")
		}
		if err := cfg.Validate(); err != nil {
			return vaulterrors.NewUserError(err, "re-edit with: syncvault config edit")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configSetDestinationCmd = &cobra.Command{
	Use:   "destination <path>",
	Short: "Set the backup destination directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return vaulterrors.Wrapf(err, "resolving %s", args[0])
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return vaulterrors.NewUserError(
				vaulterrors.Newf("destination %s is a file", path),
				"the destination must be a directory")
		}

		return updateConfig(func(cfg *config.Config) error {
			cfg.Destination = path
			return nil
		})
	},
}

var configSetTypeCmd = &cobra.Command{
	Use:   "type <full|differential>",
	Short: "Set the default backup type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(func(cfg *config.Config) error {
			cfg.BackupType = args[0]
			return nil
		})
	},
}

var configSetCompressCmd = &cobra.Command{
	Use:   "compress <on|off>",
	Short: "Enable or disable archive compression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on", "true":
			enabled = true
		case "off", "false":
			enabled = false
		default:
			return vaulterrors.NewUserError(
				vaulterrors.Newf("invalid value %q", args[0]),
				"use: syncvault config set compress on|off")
		}
		format, _ := cmd.Flags().GetString("format")

		return updateConfig(func(cfg *config.Config) error {
			cfg.Compress = enabled
			if format != "" {
				cfg.CompressionFormat = format
			}
			return nil
		})
	},
}

var configSetWorkersCmd = &cobra.Command{
	Use:   "workers <count>",
	Short: "Set the maximum number of parallel workers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[0])
		if err != nil {
			return vaulterrors.NewUserError(
				vaulterrors.Wrapf(err, "parsing %q", args[0]),
				"worker count must be a positive integer")
		}

		return updateConfig(func(cfg *config.Config) error {
			cfg.MaxWorkers = count
			return nil
		})
	},
}

var configSetScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Set the backup schedule",
	Example: `  syncvault config set schedule --type daily --time 02:00
  syncvault config set schedule --type weekly --day 5 --full-day 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		scheduleType, _ := cmd.Flags().GetString("type")
		timeOfDay, _ := cmd.Flags().GetString("time")
		day, _ := cmd.Flags().GetInt("day")
		fullDay, _ := cmd.Flags().GetInt("full-day")

		return updateConfig(func(cfg *config.Config) error {
			if scheduleType != "" {
				cfg.Schedule.Type = scheduleType
			}
			if timeOfDay != "" {
				cfg.Schedule.Time = timeOfDay
			}
			if day >= 0 {
				cfg.Schedule.DayOfWeek = day
			}
			if fullDay >= 0 {
				cfg.Schedule.FullBackupDay = fullDay
			}
			return nil
		})
	},
}

// updateConfig loads the configuration, applies a mutation, validates the
// result and persists it. Invalid mutations never reach disk.
func updateConfig(mutate func(*config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := mutate(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return vaulterrors.NewUserError(err, "")
	}
	return saveConfig(cfg)
}
