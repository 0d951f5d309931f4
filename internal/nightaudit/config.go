package nightaudit

import (
	"strings"
	"time"

	"github.com/smallbiznis/hotelpms/internal/config"
)

// Config controls when the night audit runs and how it posts.
type Config struct {
	Enabled          bool
	RunInterval      time.Duration
	DayRollover      time.Duration
	Timeout          time.Duration
	LockTTL          time.Duration
	PostedBy         string
	FinalizeInvoices bool
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		RunInterval: time.Minute,
		DayRollover: 6 * time.Hour,
		Timeout:     10 * time.Minute,
		LockTTL:     30 * time.Minute,
		PostedBy:    "night-audit",
	}
}

func ProvideConfig(cfg config.Config) Config {
	na := cfg.NightAudit
	return Config{
		Enabled:          na.Enabled,
		RunInterval:      na.RunInterval,
		DayRollover:      na.DayRollover,
		Timeout:          na.Timeout,
		LockTTL:          na.LockTTL,
		PostedBy:         na.PostedBy,
		FinalizeInvoices: na.FinalizeInvoices,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.DayRollover < 0 {
		c.DayRollover = defaults.DayRollover
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if strings.TrimSpace(c.PostedBy) == "" {
		c.PostedBy = defaults.PostedBy
	}
	return c
}
