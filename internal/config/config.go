package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/paths"
	"github.com/syncvault/syncvault/internal/stage"
	"github.com/syncvault/syncvault/pkg/fileutil"
)

// CurrentVersion is the persisted configuration format version.
const CurrentVersion = 1

// Backup types.
const (
	TypeFull         = "full"
	TypeDifferential = "differential"
)

// Schedule types.
const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

// Config is the persisted configuration. A backup run treats it as a
// read-only snapshot except for the single history append at the end.
type Config struct {
	Version           int             `mapstructure:"version" yaml:"version"`
	Sources           []string        `mapstructure:"sources" yaml:"sources"`
	Destination       string          `mapstructure:"destination" yaml:"destination"`
	BackupType        string          `mapstructure:"backup_type" yaml:"backup_type"`
	Compress          bool            `mapstructure:"compress" yaml:"compress"`
	CompressionFormat string          `mapstructure:"compression_format" yaml:"compression_format"`
	MaxWorkers        int             `mapstructure:"max_workers" yaml:"max_workers"`
	ExcludePatterns   []string        `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	Schedule          Schedule        `mapstructure:"schedule" yaml:"schedule"`
	History           []HistoryRecord `mapstructure:"history" yaml:"history"`
}

// Schedule describes when backups should run and which weekday forces a
// full backup. Weekdays are persisted with Monday = 0, matching the format
// written by earlier releases.
type Schedule struct {
	Type          string `mapstructure:"type" yaml:"type"`
	Time          string `mapstructure:"time" yaml:"time"`
	DayOfWeek     int    `mapstructure:"day_of_week" yaml:"day_of_week"`
	FullBackupDay int    `mapstructure:"full_backup_day" yaml:"full_backup_day"`
}

// HistoryRecord is an immutable snapshot of one completed backup run.
type HistoryRecord struct {
	// Timestamp identifies the run, formatted YYYYMMDD_HHMMSS.
	Timestamp string `mapstructure:"timestamp" yaml:"timestamp"`
	// Type is "full" or "differential".
	Type string `mapstructure:"type" yaml:"type"`
	// Path is the produced backup artifact (archive file or directory).
	Path string `mapstructure:"path" yaml:"path"`
	// ManifestPath is the durable copy of this run's manifest, used as
	// the prior manifest by the next differential run.
	ManifestPath string `mapstructure:"manifest_path" yaml:"manifest_path"`
	// SizeBytes is the size of the artifact.
	SizeBytes int64 `mapstructure:"size" yaml:"size"`
	// FileCount is the number of entries in the run's manifest.
	FileCount int `mapstructure:"file_count" yaml:"file_count"`
	// Processed, Skipped and Errors are the run's file-level stats.
	Processed int `mapstructure:"processed" yaml:"processed"`
	Skipped   int `mapstructure:"skipped" yaml:"skipped"`
	Errors    int `mapstructure:"errors" yaml:"errors"`
	// ElapsedSeconds is the wall-clock staging-through-archive duration.
	ElapsedSeconds float64 `mapstructure:"elapsed_time" yaml:"elapsed_time"`
}

// DefaultExcludePatterns are applied to fresh configurations.
var DefaultExcludePatterns = []string{"*.tmp", "*.temp", "~*", "Thumbs.db", ".DS_Store"}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Version:           CurrentVersion,
		Sources:           []string{},
		BackupType:        TypeFull,
		Compress:          true,
		CompressionFormat: "zip",
		MaxWorkers:        stage.DefaultWorkers(),
		ExcludePatterns:   append([]string(nil), DefaultExcludePatterns...),
		Schedule: Schedule{
			Type:          ScheduleDaily,
			Time:          "00:00",
			DayOfWeek:     0,
			FullBackupDay: 0,
		},
		History: []HistoryRecord{},
	}
}

// Load reads the configuration from path, or from the default location if
// path is empty. A missing file yields a default configuration rather than
// an error; the first Save creates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = paths.ConfigFile()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "stat config %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SYNCVAULT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	cfg.migrate()
	return &cfg, nil
}

// Save writes the configuration atomically to path, or to the default
// location if path is empty. Parent directories are created as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = paths.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAML(path, c)
}

// migrate upgrades an older persisted shape in place, filling fields that
// did not exist when the file was written.
func (c *Config) migrate() {
	if c.Version == 0 {
		// Pre-versioning shape: max_workers and exclude_patterns may be
		// absent entirely.
		c.Version = CurrentVersion
	}
	if c.BackupType == "" {
		c.BackupType = TypeFull
	}
	if c.CompressionFormat == "" {
		c.CompressionFormat = "zip"
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = stage.DefaultWorkers()
	}
	if c.ExcludePatterns == nil {
		c.ExcludePatterns = append([]string(nil), DefaultExcludePatterns...)
	}
	if c.Schedule.Type == "" {
		c.Schedule.Type = ScheduleDaily
	}
	if c.Schedule.Time == "" {
		c.Schedule.Time = "00:00"
	}
}

// LastRecord returns the most recent history record, or nil when the
// history is empty.
func (c *Config) LastRecord() *HistoryRecord {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}

// AppendHistory appends a run record. Records are never mutated or removed.
func (c *Config) AppendHistory(record HistoryRecord) {
	c.History = append(c.History, record)
}
