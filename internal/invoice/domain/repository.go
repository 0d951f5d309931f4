package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// Create inserts the invoice together with its line items.
	Create(ctx context.Context, inv *GuestInvoice) error
	// Save updates the invoice header and upserts its line items.
	Save(ctx context.Context, inv *GuestInvoice) error
	FindByID(ctx context.Context, id snowflake.ID) (*GuestInvoice, error)
	// FindByIDForUpdate locks the invoice row where the dialect supports it.
	FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*GuestInvoice, error)
	// FindByFolioID returns the non-void invoice issued for a folio.
	FindByFolioID(ctx context.Context, folioID snowflake.ID) (*GuestInvoice, error)
	List(ctx context.Context, filter ListFilter) ([]GuestInvoice, error)
	// ListOutstanding returns final invoices with an amount still due.
	ListOutstanding(ctx context.Context) ([]GuestInvoice, error)
	// CountNumbersWithPrefix counts invoice or note numbers sharing prefix.
	CountNumbersWithPrefix(ctx context.Context, kind NumberKind, prefix string) (int64, error)

	CreateNote(ctx context.Context, note *AdjustmentNote) error
	ListNotes(ctx context.Context, invoiceID snowflake.ID) ([]AdjustmentNote, error)
}

type NumberKind int

const (
	NumberKindInvoice NumberKind = iota
	NumberKindNote
)

type ListFilter struct {
	Status  InvoiceStatus
	FolioID *snowflake.ID
	Request ListInvoiceRequest
}
