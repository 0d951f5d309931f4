package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	agingdomain "github.com/smallbiznis/hotelpms/internal/aging/domain"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Config      config.Config
	Finance     *config.FinanceConfigHolder
	InvoiceRepo invoicedomain.Repository
}

type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	termsDays   int
	finance     *config.FinanceConfigHolder
	invoiceRepo invoicedomain.Repository
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log:         p.Log.Named("aging.service"),
		clock:       p.Clock,
		termsDays:   p.Config.Invoice.PaymentTermsDays,
		finance:     p.Finance,
		invoiceRepo: p.InvoiceRepo,
	}
}

// ReceivablesReport ages final invoices that still carry a balance once
// credit and debit notes are netted in. A zero asOf means now.
func (s *Service) ReceivablesReport(ctx context.Context, asOf time.Time) (agingdomain.Report, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}

	// Buckets are read on each call so finance.yml edits apply without a restart.
	bucketer, err := NewBucketer(s.finance.Get().AgingBuckets)
	if err != nil {
		return agingdomain.Report{}, err
	}

	invoices, err := s.invoiceRepo.List(ctx, invoicedomain.ListFilter{Status: invoicedomain.InvoiceStatusFinal})
	if err != nil {
		return agingdomain.Report{}, err
	}

	entries := make([]agingdomain.Entry, 0, len(invoices))
	for _, inv := range invoices {
		notes, err := s.invoiceRepo.ListNotes(ctx, inv.ID)
		if err != nil {
			return agingdomain.Report{}, err
		}
		balance := Outstanding(inv, notes)
		if !balance.IsPositive() {
			continue
		}
		entries = append(entries, agingdomain.Entry{
			DocumentID:     inv.ID.String(),
			DocumentNumber: inv.InvoiceNumber,
			Party:          inv.GuestName,
			Amount:         balance,
			DueDate:        s.dueDate(inv),
		})
	}

	report := bucketer.BuildReport(entries, asOf)
	s.log.Info("receivables aged",
		zap.Time("as_of", report.AsOf),
		zap.Int("entries", len(report.Entries)),
		zap.String("total", report.Total.StringFixed(2)),
	)
	return report, nil
}

// Outstanding is the invoice balance after adjustment notes.
func Outstanding(inv invoicedomain.GuestInvoice, notes []invoicedomain.AdjustmentNote) decimal.Decimal {
	balance := inv.AmountDue
	for _, note := range notes {
		switch note.Type {
		case invoicedomain.NoteTypeCredit:
			balance = balance.Sub(note.Total)
		case invoicedomain.NoteTypeDebit:
			balance = balance.Add(note.Total)
		}
	}
	return balance
}

func (s *Service) dueDate(inv invoicedomain.GuestInvoice) time.Time {
	if inv.DueDate != nil {
		return *inv.DueDate
	}
	issued := inv.InvoiceDate
	if inv.FinalizedAt != nil {
		issued = *inv.FinalizedAt
	}
	return dayStart(issued).AddDate(0, 0, s.termsDays)
}
