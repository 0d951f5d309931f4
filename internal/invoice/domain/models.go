// Package domain contains persistence models for guest invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states. Draft and pending
// invoices are mutable; final invoices are only adjusted through notes.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusFinal   InvoiceStatus = "final"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Mutable reports whether charges and discounts may still change.
func (s InvoiceStatus) Mutable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPending
}

// ItemType classifies an invoice line for reporting and exemptions.
type ItemType string

const (
	ItemTypeRoomCharge    ItemType = "room-charge"
	ItemTypeFNBRestaurant ItemType = "fnb-restaurant"
	ItemTypeMisc          ItemType = "misc"
)

// GuestInvoice is an invoice issued to a guest, usually from a folio.
type GuestInvoice struct {
	ID                  snowflake.ID                        `gorm:"primaryKey" json:"id"`
	InvoiceNumber       string                              `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	FolioID             *snowflake.ID                       `gorm:"index" json:"folio_id,omitempty"`
	GuestName           string                              `gorm:"type:text;not null" json:"guest_name"`
	RoomNumber          string                              `gorm:"type:text" json:"room_number"`
	Currency            string                              `gorm:"type:text;not null" json:"currency"`
	Status              InvoiceStatus                       `gorm:"type:text;not null;index" json:"status"`
	InvoiceDate         time.Time                           `gorm:"not null;index" json:"invoice_date"`
	LineItems           []InvoiceLineItem                   `gorm:"foreignKey:InvoiceID" json:"line_items"`
	Discounts           datatypes.JSONSlice[Discount]       `gorm:"type:json" json:"discounts"`
	Payments            datatypes.JSONSlice[Payment]        `gorm:"type:json" json:"payments"`
	TaxLines            datatypes.JSONSlice[InvoiceTaxLine] `gorm:"type:json" json:"tax_lines"`
	Subtotal            decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	TotalDiscount       decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"total_discount"`
	ServiceChargeAmount decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"service_charge_amount"`
	TotalTax            decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"total_tax"`
	GrandTotal          decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"grand_total"`
	TotalPaid           decimal.Decimal                     `gorm:"type:numeric(18,2);not null" json:"total_paid"`
	AmountDue           decimal.Decimal                     `gorm:"type:numeric(18,2);not null;index" json:"amount_due"`
	FinalizedAt         *time.Time                          `json:"finalized_at,omitempty"`
	DueDate             *time.Time                          `json:"due_date,omitempty"`
	VoidedAt            *time.Time                          `json:"voided_at,omitempty"`
	VoidReason          string                              `gorm:"type:text" json:"void_reason,omitempty"`
	CreatedAt           time.Time                           `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                           `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (GuestInvoice) TableName() string { return "guest_invoices" }

// ActiveLineItems returns the lines that count toward totals.
func (inv *GuestInvoice) ActiveLineItems() []InvoiceLineItem {
	out := make([]InvoiceLineItem, 0, len(inv.LineItems))
	for _, item := range inv.LineItems {
		if !item.IsVoided {
			out = append(out, item)
		}
	}
	return out
}

// InvoiceLineItem is one fully taxed line on an invoice.
type InvoiceLineItem struct {
	ID                      snowflake.ID                                 `gorm:"primaryKey" json:"id"`
	InvoiceID               snowflake.ID                                 `gorm:"not null;index" json:"invoice_id"`
	SourceID                *snowflake.ID                                `gorm:"index" json:"source_id,omitempty"`
	Date                    time.Time                                    `gorm:"not null" json:"date"`
	ItemType                ItemType                                     `gorm:"type:text;not null" json:"item_type"`
	Department              taxdomain.Department                         `gorm:"type:text;not null" json:"department"`
	Category                string                                       `gorm:"type:text" json:"category,omitempty"`
	Description             string                                       `gorm:"type:text;not null" json:"description"`
	Quantity                decimal.Decimal                              `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice               decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	LineTotal               decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"line_total"`
	DiscountAmount          decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"discount_amount"`
	NetAmount               decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"net_amount"`
	Taxable                 bool                                         `gorm:"not null" json:"taxable"`
	ServiceChargeApplicable bool                                         `gorm:"not null" json:"service_charge_applicable"`
	ServiceChargeAmount     decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"service_charge_amount"`
	TaxLines                datatypes.JSONSlice[taxdomain.LineTaxDetail] `gorm:"type:json" json:"tax_lines"`
	TotalTax                decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"total_tax"`
	LineGrandTotal          decimal.Decimal                              `gorm:"type:numeric(18,2);not null" json:"line_grand_total"`
	PostedBy                string                                       `gorm:"type:text" json:"posted_by"`
	PostedAt                time.Time                                    `gorm:"not null" json:"posted_at"`
	IsVoided                bool                                         `gorm:"not null" json:"is_voided"`
}

// TableName sets the database table name.
func (InvoiceLineItem) TableName() string { return "guest_invoice_line_items" }

// DiscountScope selects whether a discount targets one line or the invoice.
type DiscountScope string

const (
	DiscountScopeLine    DiscountScope = "line-level"
	DiscountScopeInvoice DiscountScope = "invoice-level"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Discount is stored on the invoice for audit. Line-level discounts are
// also folded into the target line's DiscountAmount.
type Discount struct {
	ID         snowflake.ID    `json:"id"`
	Scope      DiscountScope   `json:"scope"`
	Type       DiscountType    `json:"type"`
	Value      decimal.Decimal `json:"value"`
	LineItemID *snowflake.ID   `json:"line_item_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	AppliedBy  string          `json:"applied_by,omitempty"`
	AppliedAt  time.Time       `json:"applied_at"`
}

// Payment is money received against an invoice.
type Payment struct {
	ID         snowflake.ID    `json:"id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// NoteType distinguishes credit notes from debit notes.
type NoteType string

const (
	NoteTypeCredit NoteType = "credit"
	NoteTypeDebit  NoteType = "debit"
)

// AdjustmentNote corrects a final invoice without touching its totals.
type AdjustmentNote struct {
	ID                  snowflake.ID                         `gorm:"primaryKey" json:"id"`
	NoteNumber          string                               `gorm:"type:text;not null;uniqueIndex" json:"note_number"`
	InvoiceID           snowflake.ID                         `gorm:"not null;index" json:"invoice_id"`
	Type                NoteType                             `gorm:"type:text;not null" json:"type"`
	Reason              string                               `gorm:"type:text;not null" json:"reason"`
	LineItems           datatypes.JSONSlice[InvoiceLineItem] `gorm:"type:json" json:"line_items"`
	TaxLines            datatypes.JSONSlice[InvoiceTaxLine]  `gorm:"type:json" json:"tax_lines"`
	Subtotal            decimal.Decimal                      `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	ServiceChargeAmount decimal.Decimal                      `gorm:"type:numeric(18,2);not null" json:"service_charge_amount"`
	TotalTax            decimal.Decimal                      `gorm:"type:numeric(18,2);not null" json:"total_tax"`
	Total               decimal.Decimal                      `gorm:"type:numeric(18,2);not null" json:"total"`
	IssuedBy            string                               `gorm:"type:text" json:"issued_by"`
	IssuedAt            time.Time                            `gorm:"not null" json:"issued_at"`
	CreatedAt           time.Time                            `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (AdjustmentNote) TableName() string { return "invoice_adjustment_notes" }
