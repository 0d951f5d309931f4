package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	"github.com/smallbiznis/hotelpms/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	taxservice "github.com/smallbiznis/hotelpms/internal/tax/service"
	"github.com/smallbiznis/hotelpms/pkg/db"
	"github.com/smallbiznis/hotelpms/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const numberAttempts = 3

var maxPercentage = decimal.NewFromInt(100)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    config.Config
	Finance   *config.FinanceConfigHolder
	Repo      invoicedomain.Repository
	FolioRepo foliodomain.Repository
	Resolver  taxdomain.Resolver
	Metrics   *metrics.FinanceMetrics     `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	cfg       config.InvoiceConfig
	currency  string
	finance   *config.FinanceConfigHolder
	repo      invoicedomain.Repository
	folioRepo foliodomain.Repository
	resolver  taxdomain.Resolver
	builder   *Builder
	metrics   *metrics.FinanceMetrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return newService(p)
}

func newService(p ServiceParam) *Service {
	engine := taxservice.NewEngine(taxservice.WithDepartmentScope(p.Config.Invoice.DepartmentScopedTaxes))
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Config.Invoice,
		currency:  p.Config.Currency,
		finance:   p.Finance,
		repo:      p.Repo,
		folioRepo: p.FolioRepo,
		resolver:  p.Resolver,
		builder:   NewBuilder(engine, p.GenID, p.Clock),
		metrics:   p.Metrics,
	}
}

func (s *Service) CreateFromFolio(ctx context.Context, req invoicedomain.CreateFromFolioRequest) (*invoicedomain.GuestInvoice, error) {
	folioID, err := parseID(req.FolioID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	folio, err := s.folioRepo.FindByID(ctx, folioID)
	if err != nil {
		return nil, err
	}
	if folio == nil {
		return nil, foliodomain.ErrNotFound
	}

	existing, err := s.repo.FindByFolioID(ctx, folio.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invoicedomain.ErrFolioAlreadyInvoiced
	}

	rates, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rates: %w", err)
	}

	builder := s.builder
	if req.DepartmentScope != nil {
		builder = builder.WithDepartmentScope(*req.DepartmentScope)
	}

	lines := make([]invoicedomain.InvoiceLineItem, 0, len(folio.Charges)+len(folio.ExtraServices))
	for _, charge := range folio.Charges {
		if charge.IsVoided {
			continue
		}
		line, err := builder.FromCharge(charge, rates)
		if err != nil {
			return nil, fmt.Errorf("folio charge %s: %w", charge.ID, err)
		}
		lines = append(lines, line)
	}
	for _, extra := range folio.ExtraServices {
		line, err := builder.FromExtraService(extra, rates)
		if err != nil {
			return nil, fmt.Errorf("folio extra service %s: %w", extra.ID, err)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}

	payments := make([]invoicedomain.Payment, 0, len(folio.Payments))
	for _, p := range folio.Payments {
		payments = append(payments, invoicedomain.Payment{
			ID:         p.ID,
			Method:     p.Method,
			Amount:     p.Amount,
			Reference:  p.Reference,
			ReceivedAt: p.ReceivedAt,
		})
	}

	now := s.clock.Now()
	inv := &invoicedomain.GuestInvoice{
		ID:          s.genID.Generate(),
		FolioID:     &folio.ID,
		GuestName:   folio.GuestName,
		RoomNumber:  folio.RoomNumber,
		Currency:    folio.Currency,
		Status:      invoicedomain.InvoiceStatusDraft,
		InvoiceDate: invoiceDate(req.InvoiceDate, now),
		LineItems:   lines,
		Payments:    payments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	CalculateTotals(inv.LineItems, inv.Discounts, inv.Payments).Apply(inv)

	if err := s.create(ctx, inv); err != nil {
		return nil, err
	}

	s.metrics.IncInvoiceCreated(metrics.InvoiceSourceFolio)
	s.log.Info("invoice created from folio",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("folio_id", folio.ID.String()),
		zap.String("issued_by", strings.TrimSpace(req.IssuedBy)),
		zap.Bool("department_scope", builder.engine.DepartmentScoped()),
		zap.String("grand_total", inv.GrandTotal.StringFixed(2)),
	)
	return inv, nil
}

func (s *Service) CreateManual(ctx context.Context, req invoicedomain.CreateManualRequest) (*invoicedomain.GuestInvoice, error) {
	guest := strings.TrimSpace(req.GuestName)
	if guest == "" {
		return nil, invoicedomain.ErrInvalidGuestName
	}
	if len(req.Charges) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}

	rates, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rates: %w", err)
	}

	lines := make([]invoicedomain.InvoiceLineItem, 0, len(req.Charges))
	for i, charge := range req.Charges {
		line, err := s.builder.FromManual(charge, rates)
		if err != nil {
			return nil, fmt.Errorf("charge %d: %w", i, err)
		}
		lines = append(lines, line)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	now := s.clock.Now()
	inv := &invoicedomain.GuestInvoice{
		ID:          s.genID.Generate(),
		GuestName:   guest,
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		Currency:    currency,
		Status:      invoicedomain.InvoiceStatusDraft,
		InvoiceDate: invoiceDate(req.InvoiceDate, now),
		LineItems:   lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	CalculateTotals(inv.LineItems, inv.Discounts, inv.Payments).Apply(inv)

	if err := s.create(ctx, inv); err != nil {
		return nil, err
	}

	s.metrics.IncInvoiceCreated(metrics.InvoiceSourceManual)
	s.log.Info("manual invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("line_items", len(inv.LineItems)),
	)
	return inv, nil
}

func (s *Service) AddCharge(ctx context.Context, req invoicedomain.AddChargeRequest) (*invoicedomain.GuestInvoice, error) {
	rates, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rates: %w", err)
	}
	line, err := s.builder.FromManual(req.Charge, rates)
	if err != nil {
		return nil, err
	}

	inv, err := s.mutate(ctx, req.InvoiceID, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		if !inv.Status.Mutable() {
			return false, invoicedomain.ErrInvoiceImmutable
		}
		line.InvoiceID = inv.ID
		inv.LineItems = append(inv.LineItems, line)
		s.recalculate(inv)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice charge added",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("line_item_id", line.ID.String()),
		zap.String("line_grand_total", line.LineGrandTotal.StringFixed(2)),
	)
	return inv, nil
}

func (s *Service) ApplyDiscount(ctx context.Context, req invoicedomain.ApplyDiscountRequest) (*invoicedomain.GuestInvoice, error) {
	if !req.Value.IsPositive() {
		return nil, invoicedomain.ErrInvalidDiscount
	}
	switch req.Type {
	case invoicedomain.DiscountTypePercentage:
		if req.Value.GreaterThan(maxPercentage) {
			return nil, invoicedomain.ErrInvalidDiscount
		}
	case invoicedomain.DiscountTypeFixed:
	default:
		return nil, invoicedomain.ErrInvalidDiscount
	}

	var lineID *snowflake.ID
	switch req.Scope {
	case invoicedomain.DiscountScopeLine:
		id, err := parseID(req.LineItemID)
		if err != nil {
			return nil, invoicedomain.ErrInvalidID
		}
		lineID = &id
	case invoicedomain.DiscountScopeInvoice:
	default:
		return nil, invoicedomain.ErrInvalidDiscount
	}

	rates, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rates: %w", err)
	}

	inv, err := s.mutate(ctx, req.InvoiceID, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		if !inv.Status.Mutable() {
			return false, invoicedomain.ErrInvoiceImmutable
		}

		if lineID != nil {
			if err := s.discountLine(inv, *lineID, req, rates); err != nil {
				return false, err
			}
		}

		inv.Discounts = append(inv.Discounts, invoicedomain.Discount{
			ID:         s.genID.Generate(),
			Scope:      req.Scope,
			Type:       req.Type,
			Value:      req.Value,
			LineItemID: lineID,
			Reason:     strings.TrimSpace(req.Reason),
			AppliedBy:  strings.TrimSpace(req.AppliedBy),
			AppliedAt:  s.clock.Now(),
		})
		s.recalculate(inv)
		if inv.GrandTotal.IsNegative() {
			return false, invoicedomain.ErrInvalidDiscount
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice discount applied",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("scope", string(req.Scope)),
		zap.String("type", string(req.Type)),
		zap.String("value", req.Value.String()),
	)
	return inv, nil
}

func (s *Service) discountLine(inv *invoicedomain.GuestInvoice, lineID snowflake.ID, req invoicedomain.ApplyDiscountRequest, rates taxdomain.RateSet) error {
	for i, line := range inv.LineItems {
		if line.ID != lineID || line.IsVoided {
			continue
		}
		amount := money.Round2(req.Value)
		if req.Type == invoicedomain.DiscountTypePercentage {
			amount = money.Percent(line.LineTotal, req.Value)
		}
		discount := line.DiscountAmount.Add(amount)
		if discount.GreaterThan(line.LineTotal) {
			return invoicedomain.ErrInvalidDiscount
		}
		line.DiscountAmount = discount
		inv.LineItems[i] = s.builder.Recalculate(line, rates)
		return nil
	}
	return invoicedomain.ErrLineItemNotFound
}

func (s *Service) RecordPayment(ctx context.Context, req invoicedomain.RecordPaymentRequest) (*invoicedomain.GuestInvoice, error) {
	if !req.Amount.IsPositive() {
		return nil, invoicedomain.ErrInvalidPayment
	}

	var payment invoicedomain.Payment
	inv, err := s.mutate(ctx, req.InvoiceID, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		if inv.Status == invoicedomain.InvoiceStatusVoid {
			return false, invoicedomain.ErrInvoiceVoided
		}
		payment = invoicedomain.Payment{
			ID:         s.genID.Generate(),
			Method:     strings.ToLower(strings.TrimSpace(req.Method)),
			Amount:     req.Amount,
			Reference:  strings.TrimSpace(req.Reference),
			ReceivedAt: s.clock.Now(),
		}
		inv.Payments = append(inv.Payments, payment)

		// Charge totals stay as they are; only the balance moves.
		paid := decimal.Zero
		for _, p := range inv.Payments {
			paid = paid.Add(p.Amount)
		}
		inv.TotalPaid = paid
		inv.AmountDue = inv.GrandTotal.Sub(paid)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("amount_due", inv.AmountDue.StringFixed(2)),
	}
	if inv.AmountDue.IsNegative() {
		s.log.Warn("invoice overpaid", fields...)
	} else {
		s.log.Info("invoice payment recorded", fields...)
	}
	return inv, nil
}

func (s *Service) MarkPending(ctx context.Context, id string) (*invoicedomain.GuestInvoice, error) {
	return s.mutate(ctx, id, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		switch inv.Status {
		case invoicedomain.InvoiceStatusPending:
			return false, nil
		case invoicedomain.InvoiceStatusDraft:
			inv.Status = invoicedomain.InvoiceStatusPending
			s.log.Info("invoice pending", zap.String("invoice_id", inv.ID.String()))
			return true, nil
		default:
			return false, invoicedomain.ErrInvoiceImmutable
		}
	})
}

// Finalize validates the invoice and freezes it. Finalizing a final invoice
// returns it unchanged.
func (s *Service) Finalize(ctx context.Context, id string) (*invoicedomain.GuestInvoice, error) {
	inv, err := s.mutate(ctx, id, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		switch inv.Status {
		case invoicedomain.InvoiceStatusFinal:
			return false, nil
		case invoicedomain.InvoiceStatusVoid:
			return false, invoicedomain.ErrInvoiceVoided
		}

		result := s.validator().Validate(inv)
		if !result.IsValid {
			return false, &invoicedomain.InvalidInvoiceError{Result: result}
		}

		now := s.clock.Now()
		due := dueDate(now, s.cfg.PaymentTermsDays)
		inv.Status = invoicedomain.InvoiceStatusFinal
		inv.FinalizedAt = &now
		inv.DueDate = &due
		return true, nil
	})
	if err != nil {
		var invalid *invoicedomain.InvalidInvoiceError
		if errors.As(err, &invalid) {
			s.metrics.IncInvoiceFinalized(metrics.OutcomeRejected)
			s.log.Warn("invoice finalization rejected",
				zap.String("invoice_id", strings.TrimSpace(id)),
				zap.Int("errors", len(invalid.Result.Errors)),
			)
		}
		return nil, err
	}

	s.metrics.IncInvoiceFinalized(metrics.OutcomeSuccess)
	s.log.Info("invoice finalized",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("grand_total", inv.GrandTotal.StringFixed(2)),
	)
	return inv, nil
}

// Void cancels a draft or pending invoice. Final invoices are corrected with
// adjustment notes instead.
func (s *Service) Void(ctx context.Context, id string, reason string) (*invoicedomain.GuestInvoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invoicedomain.ErrInvalidReason
	}

	inv, err := s.mutate(ctx, id, func(inv *invoicedomain.GuestInvoice) (bool, error) {
		switch inv.Status {
		case invoicedomain.InvoiceStatusVoid:
			return false, nil
		case invoicedomain.InvoiceStatusFinal:
			return false, invoicedomain.ErrInvoiceImmutable
		}
		now := s.clock.Now()
		inv.Status = invoicedomain.InvoiceStatusVoid
		inv.VoidedAt = &now
		inv.VoidReason = reason
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice voided",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("reason", reason),
	)
	return inv, nil
}

func (s *Service) Validate(ctx context.Context, id string) (invoicedomain.ValidationResult, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return invoicedomain.ValidationResult{}, err
	}
	return s.validator().Validate(inv), nil
}

func (s *Service) IssueAdjustmentNote(ctx context.Context, req invoicedomain.IssueNoteRequest) (*invoicedomain.AdjustmentNote, error) {
	var prefix string
	switch req.Type {
	case invoicedomain.NoteTypeCredit:
		prefix = "CN"
	case invoicedomain.NoteTypeDebit:
		prefix = "DN"
	default:
		return nil, invoicedomain.ErrInvalidNoteType
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, invoicedomain.ErrInvalidReason
	}
	if len(req.Charges) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}

	inv, err := s.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != invoicedomain.InvoiceStatusFinal {
		return nil, invoicedomain.ErrInvoiceNotFinal
	}

	rates, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rates: %w", err)
	}

	lines := make([]invoicedomain.InvoiceLineItem, 0, len(req.Charges))
	for i, charge := range req.Charges {
		line, err := s.builder.FromManual(charge, rates)
		if err != nil {
			return nil, fmt.Errorf("charge %d: %w", i, err)
		}
		line.InvoiceID = inv.ID
		lines = append(lines, line)
	}
	totals := CalculateTotals(lines, nil, nil)

	now := s.clock.Now()
	note := &invoicedomain.AdjustmentNote{
		ID:                  s.genID.Generate(),
		InvoiceID:           inv.ID,
		Type:                req.Type,
		Reason:              reason,
		LineItems:           lines,
		TaxLines:            totals.TaxLines,
		Subtotal:            totals.Subtotal.Sub(totals.TotalDiscount),
		ServiceChargeAmount: totals.ServiceChargeAmount,
		TotalTax:            totals.TotalTax,
		Total:               totals.GrandTotal,
		IssuedBy:            strings.TrimSpace(req.IssuedBy),
		IssuedAt:            now,
		CreatedAt:           now,
	}

	err = s.withNumber(ctx, invoicedomain.NumberKindNote, prefix, now, func(number string) error {
		note.NoteNumber = number
		return s.repo.CreateNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAdjustmentNote(string(note.Type))
	s.log.Info("adjustment note issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("note_number", note.NoteNumber),
		zap.String("total", note.Total.StringFixed(2)),
	)
	return note, nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.GuestInvoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) ([]invoicedomain.GuestInvoice, error) {
	filter := invoicedomain.ListFilter{
		Status:  invoicedomain.InvoiceStatus(strings.ToLower(strings.TrimSpace(string(req.Status)))),
		Request: req,
	}
	if raw := strings.TrimSpace(req.FolioID); raw != "" {
		folioID, err := parseID(raw)
		if err != nil {
			return nil, invoicedomain.ErrInvalidID
		}
		filter.FolioID = &folioID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) ListOutstanding(ctx context.Context) ([]invoicedomain.GuestInvoice, error) {
	return s.repo.ListOutstanding(ctx)
}

// mutate loads the invoice for update inside a transaction and saves it when
// fn reports a change.
func (s *Service) mutate(ctx context.Context, rawID string, fn func(inv *invoicedomain.GuestInvoice) (bool, error)) (*invoicedomain.GuestInvoice, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	var out *invoicedomain.GuestInvoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inv, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return invoicedomain.ErrNotFound
		}

		changed, err := fn(inv)
		if err != nil {
			return err
		}
		out = inv
		if !changed {
			return nil
		}
		inv.UpdatedAt = s.clock.Now()
		return repo.Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, inv *invoicedomain.GuestInvoice) error {
	return s.withNumber(ctx, invoicedomain.NumberKindInvoice, "INV", inv.InvoiceDate, func(number string) error {
		inv.InvoiceNumber = number
		return s.repo.Create(ctx, inv)
	})
}

// withNumber assigns the next PREFIX-YYYYMMDD-NNNN number, retrying when a
// concurrent writer took the same one.
func (s *Service) withNumber(ctx context.Context, kind invoicedomain.NumberKind, prefix string, date time.Time, insert func(number string) error) error {
	base := fmt.Sprintf("%s-%s-", prefix, date.UTC().Format("20060102"))

	var (
		err  error
		last int64
	)
	for attempt := 0; attempt < numberAttempts; attempt++ {
		var count int64
		count, err = s.repo.CountNumbersWithPrefix(ctx, kind, base)
		if err != nil {
			return err
		}
		// the recount includes the winner; only step past last when it does not
		next := count + 1
		if next <= last {
			next = last + 1
		}
		last = next
		err = insert(fmt.Sprintf("%s%04d", base, next))
		if err == nil || !db.IsDuplicateKeyErr(err) {
			return err
		}
		s.log.Warn("document number collision, retrying", zap.String("prefix", base), zap.Int("attempt", attempt+1))
	}
	return err
}

func (s *Service) recalculate(inv *invoicedomain.GuestInvoice) {
	CalculateTotals(inv.LineItems, inv.Discounts, inv.Payments).Apply(inv)
}

func (s *Service) validator() *Validator {
	if s.finance == nil {
		return NewValidator(money.Tolerance)
	}
	return NewValidator(decimal.NewFromFloat(s.finance.Get().ValidationTolerance))
}

func invoiceDate(requested, now time.Time) time.Time {
	if requested.IsZero() {
		requested = now
	}
	return foliodomain.DayStart(requested)
}

func dueDate(finalizedAt time.Time, termsDays int) time.Time {
	if termsDays < 0 {
		termsDays = 0
	}
	return foliodomain.DayStart(finalizedAt).AddDate(0, 0, termsDays)
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
