package nightaudit

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	foliorepository "github.com/smallbiznis/hotelpms/internal/folio/repository"
	folioservice "github.com/smallbiznis/hotelpms/internal/folio/service"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/hotelpms/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/hotelpms/internal/invoice/service"
	"github.com/smallbiznis/hotelpms/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var businessDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type staticRates taxdomain.RateSet

func (r staticRates) Resolve(context.Context) (taxdomain.RateSet, error) {
	return taxdomain.RateSet(r), nil
}

type auditFixture struct {
	audit      *Service
	redis      *miniredis.Miniredis
	registry   *prometheus.Registry
	clk        *clock.FakeClock
	node       *snowflake.Node
	folioRepo  foliodomain.Repository
	folioSvc   foliodomain.Service
	invoiceSvc invoicedomain.Service
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func rates() taxdomain.RateSet {
	return taxdomain.RateSet{
		Taxes: []taxdomain.TaxConfiguration{{
			ID: 1, Name: "VAT", Type: taxdomain.TaxTypeVAT, Rate: d("15"),
			IsActive: true, CalculationOrder: 1, TaxableOnServiceCharge: true,
		}, {
			ID: 3, Name: "Tourism levy", Type: taxdomain.TaxTypeTourismDev, Rate: d("1"),
			IsActive: true, CalculationOrder: 2,
			AppliesTo: []taxdomain.Department{taxdomain.DepartmentFrontOffice},
		}},
		ServiceCharge: &taxdomain.ServiceChargeConfiguration{
			ID: 2, Name: "Service Charge", Rate: d("10"), IsActive: true, IsTaxable: true,
			AppliesTo: []taxdomain.Department{taxdomain.DepartmentFNB},
		},
	}
}

func setupAudit(t *testing.T, mutate func(*Config)) auditFixture {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&foliodomain.Folio{},
		&foliodomain.FolioCharge{},
		&foliodomain.FolioExtraService{},
		&foliodomain.FolioPayment{},
		&invoicedomain.GuestInvoice{},
		&invoicedomain.InvoiceLineItem{},
		&invoicedomain.AdjustmentNote{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(businessDay.Add(23*time.Hour + 30*time.Minute))
	appCfg := config.Config{
		Currency: "LKR",
		Invoice:  config.InvoiceConfig{DepartmentScopedTaxes: false, PaymentTermsDays: 14},
	}

	folioRepo := foliorepository.NewRepository(db)
	folioSvc := folioservice.NewService(folioservice.ServiceParam{
		Log: log, GenID: node, Clock: clk, Config: appCfg, Repo: folioRepo,
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Config:    appCfg,
		Finance:   config.NewStaticFinanceConfigHolder(config.DefaultFinanceConfig()),
		Repo:      invoicerepository.NewRepository(db),
		FolioRepo: folioRepo,
		Resolver:  staticRates(rates()),
	})

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	registry := prometheus.NewRegistry()
	audit, err := New(Params{
		Log:        log,
		Clock:      clk,
		Config:     cfg,
		Locker:     NewLocker(client),
		FolioRepo:  folioRepo,
		FolioSvc:   folioSvc,
		InvoiceSvc: invoiceSvc,
		Metrics:    metrics.NewWithRegisterer(registry, metrics.Config{ServiceName: "hotelpms", Environment: "test"}),
	})
	require.NoError(t, err)

	return auditFixture{
		audit:      audit,
		redis:      mr,
		registry:   registry,
		clk:        clk,
		node:       node,
		folioRepo:  folioRepo,
		folioSvc:   folioSvc,
		invoiceSvc: invoiceSvc,
	}
}

func (f auditFixture) open(t *testing.T, room, rate string, in, out time.Time) *foliodomain.Folio {
	t.Helper()
	folio, err := f.folioSvc.Open(context.Background(), foliodomain.OpenRequest{
		GuestName:    "Guest " + room,
		RoomNumber:   room,
		RoomRate:     d(rate),
		CheckInDate:  in,
		CheckOutDate: out,
	})
	require.NoError(t, err)
	return folio
}

func (f auditFixture) post(t *testing.T, folio *foliodomain.Folio, dept taxdomain.Department, description, amount string, date time.Time) {
	t.Helper()
	_, err := f.folioSvc.PostCharge(context.Background(), foliodomain.PostChargeRequest{
		FolioID:     folio.ID.String(),
		Date:        date,
		Department:  dept,
		Description: description,
		Quantity:    d("1"),
		UnitPrice:   d(amount),
	})
	require.NoError(t, err)
}

func metricValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}
