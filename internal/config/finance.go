package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AgingBucket classifies receivables and payables by days past due.
// A nil MaxDays means the bucket is open ended.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

// FinanceConfig holds the hot-reloadable finance policy.
type FinanceConfig struct {
	AgingBuckets        []AgingBucket `mapstructure:"agingBuckets"`
	ValidationTolerance float64       `mapstructure:"validationTolerance"`
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		AgingBuckets: []AgingBucket{
			{Label: "current", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "61-90", MinDays: 61, MaxDays: intPtr(90)},
			{Label: "90+", MinDays: 91, MaxDays: nil},
		},
		ValidationTolerance: 0.01,
	}
}

func intPtr(v int) *int { return &v }

type FinanceConfigHolder struct {
	current atomic.Value // holds FinanceConfig
}

// NewFinanceConfigHolder looks for finance.yml in the standard locations and
// falls back to defaults when none exists.
func NewFinanceConfigHolder(log *zap.Logger) (*FinanceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("finance")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/hotelpms/config")
	v.AddConfigPath("/etc/hotelpms")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HOTELPMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return NewStaticFinanceConfigHolder(DefaultFinanceConfig()), nil
	}
	return watch(v, log)
}

// LoadFinanceConfigFile reads the given file and watches it for changes.
func LoadFinanceConfigFile(path string, log *zap.Logger) (*FinanceConfigHolder, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return watch(v, log)
}

// NewStaticFinanceConfigHolder wraps a fixed config.
func NewStaticFinanceConfigHolder(cfg FinanceConfig) *FinanceConfigHolder {
	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func watch(v *viper.Viper, log *zap.Logger) (*FinanceConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("finance.config")

	cfg, err := decodeFinanceConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticFinanceConfigHolder(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeFinanceConfig(v)
		if err != nil {
			log.Warn("finance config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("finance config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func decodeFinanceConfig(v *viper.Viper) (FinanceConfig, error) {
	cfg := DefaultFinanceConfig()
	if v.IsSet("finance.agingBuckets") {
		cfg.AgingBuckets = nil
	}
	if err := v.UnmarshalKey("finance", &cfg); err != nil {
		return FinanceConfig{}, err
	}
	if err := ValidateFinanceConfig(cfg); err != nil {
		return FinanceConfig{}, err
	}
	return cfg, nil
}

func (h *FinanceConfigHolder) Get() FinanceConfig {
	return h.current.Load().(FinanceConfig)
}

func ValidateFinanceConfig(cfg FinanceConfig) error {
	if cfg.ValidationTolerance <= 0 {
		return errors.New("finance.validationTolerance must be positive")
	}
	return ValidateAgingBuckets(cfg.AgingBuckets)
}

// ValidateAgingBuckets requires contiguous buckets starting at day 0 with an
// open-ended last bucket.
func ValidateAgingBuckets(buckets []AgingBucket) error {
	if len(buckets) == 0 {
		return errors.New("finance.agingBuckets cannot be empty")
	}
	expectedMin := 0
	for i, bucket := range buckets {
		if strings.TrimSpace(bucket.Label) == "" {
			return fmt.Errorf("finance.agingBuckets[%d]: label is required", i)
		}
		if bucket.MinDays != expectedMin {
			return fmt.Errorf("finance.agingBuckets[%d]: minDays %d, want %d", i, bucket.MinDays, expectedMin)
		}
		last := i == len(buckets)-1
		if bucket.MaxDays == nil {
			if !last {
				return fmt.Errorf("finance.agingBuckets[%d]: only the last bucket may be open ended", i)
			}
			continue
		}
		if last {
			return fmt.Errorf("finance.agingBuckets[%d]: last bucket must be open ended", i)
		}
		if *bucket.MaxDays < bucket.MinDays {
			return fmt.Errorf("finance.agingBuckets[%d]: maxDays before minDays", i)
		}
		expectedMin = *bucket.MaxDays + 1
	}
	return nil
}
