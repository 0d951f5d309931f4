package nightaudit

import (
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
)

// Report summarizes one night audit run.
type Report struct {
	RunID        string    `json:"run_id"`
	BusinessDate time.Time `json:"business_date"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`

	RoomChargesPosted  int `json:"room_charges_posted"`
	RoomChargesSkipped int `json:"room_charges_skipped"`
	InvoicesGenerated  int `json:"invoices_generated"`
	InvoicesSkipped    int `json:"invoices_skipped"`
	InvoicesFinalized  int `json:"invoices_finalized"`

	// Revenue is the grand total of the invoices generated in this run.
	Revenue      decimal.Decimal                `json:"revenue"`
	TaxCollected decimal.Decimal                `json:"tax_collected"`
	TaxSummary   []invoicedomain.InvoiceTaxLine `json:"tax_summary"`

	Outstanding       int             `json:"outstanding"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	InvoiceIDs        []string        `json:"invoice_ids"`

	Failures []Failure `json:"failures"`
}

// Failure records a folio the audit could not process.
type Failure struct {
	Stage   string `json:"stage"`
	FolioID string `json:"folio_id"`
	Error   string `json:"error"`
}

func (r *Report) fail(stage, folioID string, err error) {
	r.Failures = append(r.Failures, Failure{Stage: stage, FolioID: folioID, Error: err.Error()})
}
