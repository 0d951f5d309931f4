package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
)

type Service interface {
	CreateFromFolio(ctx context.Context, req CreateFromFolioRequest) (*GuestInvoice, error)
	CreateManual(ctx context.Context, req CreateManualRequest) (*GuestInvoice, error)
	AddCharge(ctx context.Context, req AddChargeRequest) (*GuestInvoice, error)
	ApplyDiscount(ctx context.Context, req ApplyDiscountRequest) (*GuestInvoice, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*GuestInvoice, error)
	MarkPending(ctx context.Context, id string) (*GuestInvoice, error)
	Finalize(ctx context.Context, id string) (*GuestInvoice, error)
	Void(ctx context.Context, id string, reason string) (*GuestInvoice, error)
	Validate(ctx context.Context, id string) (ValidationResult, error)
	IssueAdjustmentNote(ctx context.Context, req IssueNoteRequest) (*AdjustmentNote, error)
	Get(ctx context.Context, id string) (*GuestInvoice, error)
	List(ctx context.Context, req ListInvoiceRequest) ([]GuestInvoice, error)
	ListOutstanding(ctx context.Context) ([]GuestInvoice, error)
}

type CreateFromFolioRequest struct {
	FolioID     string    `json:"folio_id"`
	InvoiceDate time.Time `json:"invoice_date"`
	// DepartmentScope overrides the configured department scoping of taxes.
	DepartmentScope *bool  `json:"department_scope,omitempty"`
	IssuedBy        string `json:"issued_by"`
}

// ManualCharge is an ad hoc charge entered directly on an invoice.
type ManualCharge struct {
	Date           time.Time            `json:"date"`
	Department     taxdomain.Department `json:"department" validate:"required"`
	Category       string               `json:"category"`
	Description    string               `json:"description" validate:"required"`
	Quantity       decimal.Decimal      `json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal      `json:"unit_price" validate:"gte=0"`
	DiscountAmount decimal.Decimal      `json:"discount_amount" validate:"gte=0"`
	PostedBy       string               `json:"posted_by"`
}

type CreateManualRequest struct {
	GuestName   string         `json:"guest_name"`
	RoomNumber  string         `json:"room_number"`
	Currency    string         `json:"currency"`
	InvoiceDate time.Time      `json:"invoice_date"`
	Charges     []ManualCharge `json:"charges"`
}

type AddChargeRequest struct {
	InvoiceID string       `json:"invoice_id"`
	Charge    ManualCharge `json:"charge"`
}

type ApplyDiscountRequest struct {
	InvoiceID  string          `json:"invoice_id"`
	Scope      DiscountScope   `json:"scope"`
	Type       DiscountType    `json:"type"`
	Value      decimal.Decimal `json:"value"`
	LineItemID string          `json:"line_item_id,omitempty"`
	Reason     string          `json:"reason"`
	AppliedBy  string          `json:"applied_by"`
}

type RecordPaymentRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type IssueNoteRequest struct {
	InvoiceID string         `json:"invoice_id"`
	Type      NoteType       `json:"type"`
	Reason    string         `json:"reason"`
	Charges   []ManualCharge `json:"charges"`
	IssuedBy  string         `json:"issued_by"`
}

type ListInvoiceRequest struct {
	Status          InvoiceStatus `json:"status,omitempty"`
	FolioID         string        `json:"folio_id,omitempty"`
	InvoiceDateFrom *time.Time    `json:"invoice_date_from,omitempty"`
	InvoiceDateTo   *time.Time    `json:"invoice_date_to,omitempty"`
	SortBy          string        `json:"sort_by,omitempty"`
	OrderBy         string        `json:"order_by,omitempty"`
	Limit           int           `json:"limit,omitempty"`
}

// ChargeFromFolio converts a folio posting into a manual charge shape.
func ChargeFromFolio(c foliodomain.FolioCharge) ManualCharge {
	return ManualCharge{
		Date:           c.Date,
		Department:     c.Department,
		Category:       c.Category,
		Description:    c.Description,
		Quantity:       c.Quantity,
		UnitPrice:      c.UnitPrice,
		DiscountAmount: c.DiscountAmount,
		PostedBy:       c.PostedBy,
	}
}
