package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syncvault/syncvault/internal/config"
)

// ConfigCheck validates that the configuration file parses and passes
// semantic validation.
type ConfigCheck struct {
	// Path is the configuration file to validate.
	Path string
}

var _ Check = (*ConfigCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the configuration validation check.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Status = SeverityInfo
			result.Message = "no config file, defaults in effect"
			return result
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read config: %v", err)
		return result
	}

	// yaml.v3 errors carry line numbers, so surface them verbatim.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("config syntax: %v", err)
		result.FixHint = "fix the YAML syntax in " + c.Path
		return result
	}

	cfg, err := config.Load(c.Path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("loading config: %v", err)
		return result
	}
	if err := cfg.Validate(); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("invalid config: %v", err)
		result.FixHint = "adjust the value with: syncvault config set"
		return result
	}

	result.Status = SeverityPass
	result.Message = "config file is valid"
	return result
}

// SourceCheck verifies that every configured backup source exists.
type SourceCheck struct {
	Config *config.Config
}

var _ Check = (*SourceCheck)(nil)

// Name returns the unique identifier for this check.
func (c *SourceCheck) Name() string {
	return "sources"
}

// Category returns the grouping for this check.
func (c *SourceCheck) Category() string {
	return "config"
}

// Run executes the source existence check.
func (c *SourceCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if len(c.Config.Sources) == 0 {
		result.Status = SeverityError
		result.Message = "no backup sources configured"
		result.FixHint = "add one with: syncvault source add <path>"
		return result
	}

	var missing []string
	for _, src := range c.Config.Sources {
		if _, err := os.Lstat(src); err != nil {
			missing = append(missing, src)
		}
	}

	if len(missing) == len(c.Config.Sources) {
		result.Status = SeverityError
		result.Message = "no configured source exists"
		result.Details = map[string]any{"missing": missing}
		result.FixHint = "remove stale entries with: syncvault source remove <path>"
		return result
	}
	if len(missing) > 0 {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d of %d sources do not exist", len(missing), len(c.Config.Sources))
		result.Details = map[string]any{"missing": missing}
		result.FixHint = "remove stale entries with: syncvault source remove <path>"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("all %d sources exist", len(c.Config.Sources))
	return result
}

// DestinationCheck verifies the backup destination is set and writable.
type DestinationCheck struct {
	Config *config.Config
}

var _ Check = (*DestinationCheck)(nil)

// Name returns the unique identifier for this check.
func (c *DestinationCheck) Name() string {
	return "destination"
}

// Category returns the grouping for this check.
func (c *DestinationCheck) Category() string {
	return "filesystem"
}

// Run executes the destination check.
func (c *DestinationCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	dest := c.Config.Destination
	if dest == "" {
		result.Status = SeverityError
		result.Message = "no backup destination configured"
		result.FixHint = "set one with: syncvault config set destination <path>"
		return result
	}
	result.Details = map[string]any{"path": dest}

	info, err := os.Stat(dest)
	if os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = "destination does not exist yet, it is created on first run"
		return result
	}
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat destination: %v", err)
		return result
	}
	if !info.IsDir() {
		result.Status = SeverityError
		result.Message = "destination is a file, expected a directory"
		return result
	}
	if !isWritable(dest) {
		result.Status = SeverityError
		result.Message = "destination is not writable"
		result.FixHint = "chmod u+w " + dest
		return result
	}

	result.Status = SeverityPass
	result.Message = "destination is writable"
	return result
}

// StagingCheck verifies the staging root is writable and flags staging
// directories left behind by interrupted runs. It implements Fixer: Fix
// removes the stale directories.
type StagingCheck struct {
	// Root is the directory under which per-run staging directories live.
	Root string

	stale []string
}

var _ Check = (*StagingCheck)(nil)
var _ Fixer = (*StagingCheck)(nil)

// Name returns the unique identifier for this check.
func (c *StagingCheck) Name() string {
	return "staging"
}

// Category returns the grouping for this check.
func (c *StagingCheck) Category() string {
	return "filesystem"
}

// Run executes the staging area check.
func (c *StagingCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"root": c.Root},
	}

	if !isWritable(c.Root) {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("staging root %s is not writable", c.Root)
		return result
	}

	c.stale, _ = filepath.Glob(filepath.Join(c.Root, ".syncvault_staging_*"))
	if len(c.stale) > 0 {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d stale staging directories from interrupted runs", len(c.stale))
		result.Details["stale"] = c.stale
		result.Fixable = true
		result.FixHint = "remove them with: syncvault doctor --fix"
		return result
	}

	result.Status = SeverityPass
	result.Message = "staging root is writable, no stale directories"
	return result
}

// CanFix returns true if stale staging directories were found.
func (c *StagingCheck) CanFix() bool {
	return len(c.stale) > 0
}

// Fix removes the stale staging directories found by Run.
func (c *StagingCheck) Fix() []FixResult {
	results := make([]FixResult, 0, len(c.stale))
	for _, dir := range c.stale {
		result := FixResult{Path: dir}
		if err := os.RemoveAll(dir); err != nil {
			result.Description = fmt.Sprintf("failed to remove: %v", err)
			result.Error = err
		} else {
			result.Fixed = true
			result.Description = "removed"
		}
		results = append(results, result)
	}
	return results
}

// HistoryCheck verifies that recorded artifacts and manifests still exist.
// A missing manifest downgrades the next differential run to staging
// everything, so it is worth surfacing early.
type HistoryCheck struct {
	Config *config.Config
}

var _ Check = (*HistoryCheck)(nil)

// Name returns the unique identifier for this check.
func (c *HistoryCheck) Name() string {
	return "history"
}

// Category returns the grouping for this check.
func (c *HistoryCheck) Category() string {
	return "history"
}

// Run executes the history consistency check.
func (c *HistoryCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if len(c.Config.History) == 0 {
		result.Status = SeverityInfo
		result.Message = "no backups recorded yet"
		return result
	}

	var missingArtifacts, missingManifests []string
	for _, rec := range c.Config.History {
		if _, err := os.Stat(rec.Path); err != nil {
			missingArtifacts = append(missingArtifacts, rec.Path)
		}
		if rec.ManifestPath != "" {
			if _, err := os.Stat(rec.ManifestPath); err != nil {
				missingManifests = append(missingManifests, rec.ManifestPath)
			}
		}
	}

	if len(missingArtifacts) == 0 && len(missingManifests) == 0 {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d recorded backups are intact", len(c.Config.History))
		return result
	}

	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d artifacts and %d manifests from the history are missing",
		len(missingArtifacts), len(missingManifests))
	result.Details = map[string]any{}
	if len(missingArtifacts) > 0 {
		result.Details["missing_artifacts"] = missingArtifacts
	}
	if len(missingManifests) > 0 {
		result.Details["missing_manifests"] = missingManifests
		result.FixHint = "the next differential run restages files covered by missing manifests"
	}
	return result
}

// isWritable tests a directory by creating and removing a temp file.
func isWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".syncvault-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
