package nightaudit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/hotelpms/internal/invoice/service"
	"github.com/smallbiznis/hotelpms/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/smallbiznis/hotelpms/pkg/log/ctxlogger"
	"github.com/smallbiznis/hotelpms/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("hotelpms/nightaudit")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Config     Config
	Locker     *Locker
	FolioRepo  foliodomain.Repository
	FolioSvc   foliodomain.Service
	InvoiceSvc invoicedomain.Service
	Metrics    *metrics.FinanceMetrics `optional:"true"`
}

// Service runs the end-of-day routine: room charges for in-house guests,
// invoices for departures, then reconciliation.
type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	cfg        Config
	locker     *Locker
	folioRepo  foliodomain.Repository
	folioSvc   foliodomain.Service
	invoiceSvc invoicedomain.Service
	metrics    *metrics.FinanceMetrics
}

func New(p Params) (*Service, error) {
	if p.Log == nil || p.Clock == nil || p.Locker == nil || p.FolioRepo == nil || p.FolioSvc == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Service{
		log:        p.Log.Named("nightaudit.service"),
		clock:      p.Clock,
		cfg:        p.Config.withDefaults(),
		locker:     p.Locker,
		folioRepo:  p.FolioRepo,
		folioSvc:   p.FolioSvc,
		invoiceSvc: p.InvoiceSvc,
		metrics:    p.Metrics,
	}, nil
}

// Run audits businessDate. Per-folio failures are collected in the report;
// only errors that stop the whole run are returned.
func (s *Service) Run(ctx context.Context, businessDate time.Time) (*Report, error) {
	day := foliodomain.DayStart(businessDate)
	key := lockKey(day)

	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire audit lock: %w", err)
	}
	if !ok {
		s.metrics.ObserveAuditRun(metrics.OutcomeSkipped, 0)
		return nil, ErrAuditInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("release audit lock", zap.String("key", key), zap.Error(err))
		}
	}()

	start := s.clock.Now()
	runID := ulid.MustNew(ulid.Timestamp(start), ulid.DefaultEntropy()).String()
	ctx = correlation.ContextWithCorrelationID(ctx, runID)
	ctx, span := tracer.Start(ctx, "nightaudit.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("business_date", day.Format(time.DateOnly)),
	)

	report := &Report{
		RunID:             runID,
		BusinessDate:      day,
		StartedAt:         start,
		Revenue:           decimal.Zero,
		TaxCollected:      decimal.Zero,
		TaxSummary:        []invoicedomain.InvoiceTaxLine{},
		OutstandingAmount: decimal.Zero,
		InvoiceIDs:        []string{},
		Failures:          []Failure{},
	}
	log := ctxlogger.WithContext(ctx, s.log).With(
		zap.String("run_id", report.RunID),
		zap.String("business_date", day.Format(time.DateOnly)),
	)
	log.Info("nightaudit.run.start")

	if err := s.postRoomCharges(ctx, day, report); err != nil {
		s.abort(log, report, metrics.AuditStageRoomCharge, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "room charges")
		return nil, err
	}
	invoices, err := s.generateInvoices(ctx, day, report)
	if err != nil {
		s.abort(log, report, metrics.AuditStageInvoice, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invoicing")
		return nil, err
	}
	s.reconcile(report, invoices)
	span.SetAttributes(
		attribute.Int("room_charges_posted", report.RoomChargesPosted),
		attribute.Int("invoices_generated", report.InvoicesGenerated),
		attribute.Int("failure_count", len(report.Failures)),
	)

	report.FinishedAt = s.clock.Now()
	outcome := metrics.OutcomeSuccess
	if len(report.Failures) > 0 {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.ObserveAuditRun(outcome, report.FinishedAt.Sub(start))
	s.metrics.AddRoomChargesPosted(report.RoomChargesPosted)
	s.metrics.AddAuditInvoices(report.InvoicesGenerated)
	s.metrics.SetOutstanding(report.Outstanding)

	fields := []zap.Field{
		zap.Int("room_charges_posted", report.RoomChargesPosted),
		zap.Int("room_charges_skipped", report.RoomChargesSkipped),
		zap.Int("invoices_generated", report.InvoicesGenerated),
		zap.Int("invoices_skipped", report.InvoicesSkipped),
		zap.String("revenue", report.Revenue.StringFixed(2)),
		zap.Int("outstanding", report.Outstanding),
		zap.Int("failure_count", len(report.Failures)),
	}
	if len(report.Failures) > 0 {
		log.Warn("nightaudit.run.finish", fields...)
	} else {
		log.Info("nightaudit.run.finish", fields...)
	}
	return report, nil
}

func (s *Service) postRoomCharges(ctx context.Context, day time.Time, report *Report) error {
	ctx, span := tracer.Start(ctx, "nightaudit.postRoomCharges")
	defer span.End()

	folios, err := s.folioRepo.ListInHouse(ctx, day)
	if err != nil {
		return fmt.Errorf("list in-house folios: %w", err)
	}

	for _, folio := range folios {
		if err := ctx.Err(); err != nil {
			return err
		}

		posted, err := s.folioRepo.HasChargeForDate(ctx, folio.ID, foliodomain.ChargeSourceNightAudit, day)
		if err != nil {
			s.recordFailure(report, metrics.AuditStageRoomCharge, folio.ID.String(), err)
			continue
		}
		if posted {
			report.RoomChargesSkipped++
			continue
		}

		_, err = s.folioSvc.PostCharge(ctx, foliodomain.PostChargeRequest{
			FolioID:     folio.ID.String(),
			Date:        day,
			Department:  taxdomain.DepartmentFrontOffice,
			Category:    "room",
			Description: fmt.Sprintf("Room %s night of %s", folio.RoomNumber, day.Format(time.DateOnly)),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   folio.RoomRate,
			Source:      foliodomain.ChargeSourceNightAudit,
			PostedBy:    s.cfg.PostedBy,
		})
		if err != nil {
			s.recordFailure(report, metrics.AuditStageRoomCharge, folio.ID.String(), err)
			continue
		}
		report.RoomChargesPosted++
	}
	return nil
}

func (s *Service) generateInvoices(ctx context.Context, day time.Time, report *Report) ([]*invoicedomain.GuestInvoice, error) {
	ctx, span := tracer.Start(ctx, "nightaudit.generateInvoices")
	defer span.End()

	folios, err := s.folioRepo.ListDepartures(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list departures: %w", err)
	}

	scoped := true
	invoices := make([]*invoicedomain.GuestInvoice, 0, len(folios))
	for _, folio := range folios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inv, err := s.invoiceSvc.CreateFromFolio(ctx, invoicedomain.CreateFromFolioRequest{
			FolioID:         folio.ID.String(),
			InvoiceDate:     day,
			DepartmentScope: &scoped,
			IssuedBy:        s.cfg.PostedBy,
		})
		switch {
		case errors.Is(err, invoicedomain.ErrFolioAlreadyInvoiced), errors.Is(err, invoicedomain.ErrEmptyInvoice):
			report.InvoicesSkipped++
			continue
		case err != nil:
			s.recordFailure(report, metrics.AuditStageInvoice, folio.ID.String(), err)
			continue
		}

		if s.cfg.FinalizeInvoices {
			final, err := s.invoiceSvc.Finalize(ctx, inv.ID.String())
			if err != nil {
				s.recordFailure(report, metrics.AuditStageInvoice, folio.ID.String(), err)
			} else {
				inv = final
				report.InvoicesFinalized++
			}
		}

		report.InvoicesGenerated++
		report.InvoiceIDs = append(report.InvoiceIDs, inv.ID.String())
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// reconcile totals the generated invoices and merges their tax lines into one
// summary keyed the same way as an invoice's own tax lines.
func (s *Service) reconcile(report *Report, invoices []*invoicedomain.GuestInvoice) {
	var lines []invoicedomain.InvoiceLineItem
	for _, inv := range invoices {
		report.Revenue = report.Revenue.Add(inv.GrandTotal)
		report.TaxCollected = report.TaxCollected.Add(inv.TotalTax)
		if inv.AmountDue.IsPositive() {
			report.Outstanding++
			report.OutstandingAmount = report.OutstandingAmount.Add(inv.AmountDue)
		}
		lines = append(lines, inv.LineItems...)
	}
	report.TaxSummary = invoiceservice.ConsolidateTaxLines(lines)
}

func (s *Service) recordFailure(report *Report, stage, folioID string, err error) {
	report.fail(stage, folioID, err)
	s.metrics.IncAuditFailure(stage, err)
	s.log.Error("nightaudit folio failed",
		zap.String("stage", stage),
		zap.String("folio_id", folioID),
		zap.String("error_type", metrics.ClassifyReason(err)),
		zap.Error(err),
	)
}

func (s *Service) abort(log *zap.Logger, report *Report, stage string, err error) {
	s.metrics.IncAuditFailure(stage, err)
	s.metrics.ObserveAuditRun(metrics.OutcomeFailure, s.clock.Now().Sub(report.StartedAt))
	log.Error("nightaudit.run.aborted", zap.String("stage", stage), zap.Error(err))
}
