package config

import (
	"time"

	"github.com/syncvault/syncvault/internal/archive"
	"github.com/syncvault/syncvault/internal/errors"
)

// Validate checks that the configuration's fields hold permitted values.
// It does not require sources or a destination; use ValidateForRun before
// starting a backup.
func (c *Config) Validate() error {
	if c.BackupType != TypeFull && c.BackupType != TypeDifferential {
		return errors.Newf("invalid backup type %q", c.BackupType)
	}
	if c.Compress && !archive.ValidFormat(c.CompressionFormat) {
		return errors.Newf("invalid compression format %q", c.CompressionFormat)
	}
	if c.MaxWorkers < 1 {
		return errors.Newf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if err := c.Schedule.validate(); err != nil {
		return err
	}
	return nil
}

// ValidateForRun checks that the configuration is complete enough to start
// a backup run. Failures here are configuration errors: nothing has been
// read from or written to disk yet.
func (c *Config) ValidateForRun() error {
	if len(c.Sources) == 0 {
		return errors.ErrNoSources
	}
	if c.Destination == "" {
		return errors.ErrNoDestination
	}
	return c.Validate()
}

func (s Schedule) validate() error {
	switch s.Type {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
	default:
		return errors.Newf("invalid schedule type %q", s.Type)
	}
	if _, err := time.Parse("15:04", s.Time); err != nil {
		return errors.Newf("invalid schedule time %q", s.Time)
	}
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return errors.Newf("schedule day_of_week out of range: %d", s.DayOfWeek)
	}
	if s.FullBackupDay < 0 || s.FullBackupDay > 6 {
		return errors.Newf("schedule full_backup_day out of range: %d", s.FullBackupDay)
	}
	return nil
}
