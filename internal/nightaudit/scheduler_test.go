package nightaudit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/hotelpms/internal/config"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusinessDate(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "before rollover belongs to previous day", now: time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC), want: businessDay},
		{name: "at rollover starts the new day", now: time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), want: businessDay.AddDate(0, 0, 1)},
		{name: "late evening", now: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), want: businessDay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BusinessDate(tc.now, 6*time.Hour))
		})
	}
}

func TestScheduler_RunOnceAuditsEachDateOnce(t *testing.T) {
	f := setupAudit(t, nil)
	seedStays(t, f)
	f.clk.Set(time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC))

	sched := NewScheduler(f.audit, f.clk, DefaultConfig(), zap.NewNop())

	report, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, businessDay, report.BusinessDate)

	again, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, again)

	f.clk.Advance(24 * time.Hour)
	next, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, businessDay.AddDate(0, 0, 1), next.BusinessDate)
}

func TestClosedBusinessDate(t *testing.T) {
	rollover := 6 * time.Hour
	assert.Equal(t, businessDay.AddDate(0, 0, -1), ClosedBusinessDate(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), rollover))
	assert.Equal(t, businessDay.AddDate(0, 0, -1), ClosedBusinessDate(time.Date(2026, 3, 11, 5, 59, 0, 0, time.UTC), rollover))
	assert.Equal(t, businessDay, ClosedBusinessDate(time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), rollover))
}

func TestScheduler_StartedMidAfternoonLeavesOpenDayAlone(t *testing.T) {
	f := setupAudit(t, nil)
	ctx := context.Background()
	s := seedStays(t, f)
	f.clk.Set(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))

	sched := NewScheduler(f.audit, f.clk, DefaultConfig(), zap.NewNop())
	report, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, businessDay.AddDate(0, 0, -1), report.BusinessDate)
	assert.Equal(t, 0, report.InvoicesGenerated)

	posted, err := f.folioRepo.HasChargeForDate(ctx, s.inHouse.ID, foliodomain.ChargeSourceNightAudit, businessDay)
	require.NoError(t, err)
	assert.False(t, posted, "tonight's room charge waits for the rollover")

	// the departing guest keeps posting until checkout
	f.post(t, s.departure, taxdomain.DepartmentFNB, "Late lunch", "2000", businessDay)

	f.clk.Advance(time.Minute)
	again, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "closed day already audited")

	f.clk.Set(time.Date(2026, 3, 11, 6, 30, 0, 0, time.UTC))
	report, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, businessDay, report.BusinessDate)
	assert.GreaterOrEqual(t, report.InvoicesGenerated, 1)

	posted, err = f.folioRepo.HasChargeForDate(ctx, s.inHouse.ID, foliodomain.ChargeSourceNightAudit, businessDay)
	require.NoError(t, err)
	assert.True(t, posted)

	_, err = f.invoiceSvc.CreateFromFolio(ctx, invoicedomain.CreateFromFolioRequest{FolioID: s.departure.ID.String()})
	assert.ErrorIs(t, err, invoicedomain.ErrFolioAlreadyInvoiced, "departure invoiced after the day closed")
}

func TestScheduler_LockHeldIsNotAnError(t *testing.T) {
	f := setupAudit(t, nil)
	f.clk.Set(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC))
	require.NoError(t, f.redis.Set(lockKey(businessDay), "other-replica"))

	sched := NewScheduler(f.audit, f.clk, DefaultConfig(), zap.NewNop())
	report, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestProvideConfigAppliesDefaults(t *testing.T) {
	cfg := ProvideConfig(config.Config{NightAudit: config.NightAuditConfig{Enabled: true, PostedBy: " "}})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.RunInterval)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.LockTTL)
	assert.Equal(t, "night-audit", cfg.PostedBy)
}
