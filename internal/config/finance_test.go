package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultFinanceConfigIsValid(t *testing.T) {
	cfg := DefaultFinanceConfig()
	require.NoError(t, ValidateFinanceConfig(cfg))
	assert.Len(t, cfg.AgingBuckets, 4)
	assert.Equal(t, "current", cfg.AgingBuckets[0].Label)
	assert.Nil(t, cfg.AgingBuckets[3].MaxDays)
}

func TestLoadFinanceConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.yml")
	content := `finance:
  validationTolerance: 0.05
  agingBuckets:
    - label: current
      minDays: 0
      maxDays: 45
    - label: overdue
      minDays: 46
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := LoadFinanceConfigFile(path, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.InDelta(t, 0.05, cfg.ValidationTolerance, 1e-9)
	require.Len(t, cfg.AgingBuckets, 2)
	assert.Equal(t, "overdue", cfg.AgingBuckets[1].Label)
	require.NotNil(t, cfg.AgingBuckets[0].MaxDays)
	assert.Equal(t, 45, *cfg.AgingBuckets[0].MaxDays)
	assert.Nil(t, cfg.AgingBuckets[1].MaxDays)
}

func TestValidateFinanceConfigRejectsGaps(t *testing.T) {
	cfg := FinanceConfig{
		ValidationTolerance: 0.01,
		AgingBuckets: []AgingBucket{
			{Label: "current", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "late", MinDays: 40},
		},
	}
	assert.Error(t, ValidateFinanceConfig(cfg))

	cfg.AgingBuckets[1].MinDays = 31
	assert.NoError(t, ValidateFinanceConfig(cfg))

	cfg.AgingBuckets[1].MaxDays = intPtr(60)
	assert.Error(t, ValidateFinanceConfig(cfg))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOTEL_CURRENCY", "usd")
	t.Setenv("NIGHT_AUDIT_DAY_ROLLOVER", "not-a-duration")
	cfg := Load()
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, DefaultFinanceConfig().ValidationTolerance, 0.01)
	assert.Equal(t, "6h0m0s", cfg.NightAudit.DayRollover.String())
	assert.True(t, cfg.Invoice.DepartmentScopedTaxes)
}
