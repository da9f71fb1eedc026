// Package paths provides cross-platform path resolution for syncvault's
// configuration and scratch directories.
//
// Configuration follows the XDG Base Directory Specification via
// github.com/adrg/xdg, so the config file lands in ~/.config/syncvault on
// Linux and the platform-appropriate location elsewhere.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG config home.
const AppName = "syncvault"

// ConfigDir returns the directory holding the syncvault config file.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigFile returns the default path of the persisted configuration.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for run logs and other mutable state.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// StagingRoot returns the directory under which per-run staging
// directories are created. Staging lives under the user's home rather
// than os.TempDir so large backups are not constrained by a small tmpfs.
func StagingRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
