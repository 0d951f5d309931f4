package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	"github.com/smallbiznis/hotelpms/pkg/db/option"
	"github.com/smallbiznis/hotelpms/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db    *gorm.DB
	notes repository.Repository[invoicedomain.AdjustmentNote]
}

func NewRepository(db *gorm.DB) invoicedomain.Repository {
	return &repo{
		db:    db,
		notes: repository.ProvideStore[invoicedomain.AdjustmentNote](db),
	}
}

func (r *repo) WithTx(tx *gorm.DB) invoicedomain.Repository {
	return NewRepository(tx)
}

func (r *repo) Create(ctx context.Context, inv *invoicedomain.GuestInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := inv.LineItems
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		inv.LineItems = lines
		return nil
	})
}

func (r *repo) Save(ctx context.Context, inv *invoicedomain.GuestInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(inv).Error; err != nil {
			return err
		}
		for i := range inv.LineItems {
			inv.LineItems[i].InvoiceID = inv.ID
			if err := tx.Save(&inv.LineItems[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*invoicedomain.GuestInvoice, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*invoicedomain.GuestInvoice, error) {
	stmt := r.db.WithContext(ctx).Where("id = ?", id)
	if r.db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(stmt)
}

func (r *repo) FindByFolioID(ctx context.Context, folioID snowflake.ID) (*invoicedomain.GuestInvoice, error) {
	return r.first(r.db.WithContext(ctx).
		Where("folio_id = ? AND status <> ?", folioID, invoicedomain.InvoiceStatusVoid).
		Order("created_at DESC"))
}

func (r *repo) List(ctx context.Context, filter invoicedomain.ListFilter) ([]invoicedomain.GuestInvoice, error) {
	stmt := r.db.WithContext(ctx).Model(&invoicedomain.GuestInvoice{})

	opts := []option.QueryOption{}
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}))
	}
	if filter.FolioID != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "folio_id", Operator: option.EQ, Value: *filter.FolioID}))
	}
	if from := filter.Request.InvoiceDateFrom; from != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "invoice_date", Operator: option.GTE, Value: *from}))
	}
	if to := filter.Request.InvoiceDateTo; to != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "invoice_date", Operator: option.LTE, Value: *to}))
	}
	opts = append(opts,
		option.WithSortBy(option.WithQuerySortBy(filter.Request.SortBy, filter.Request.OrderBy, map[string]bool{
			"created_at":     true,
			"invoice_date":   true,
			"invoice_number": true,
			"grand_total":    true,
		})),
		option.WithLimit(filter.Request.Limit),
		option.WithPreload("LineItems"),
	)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var items []invoicedomain.GuestInvoice
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListOutstanding(ctx context.Context) ([]invoicedomain.GuestInvoice, error) {
	var items []invoicedomain.GuestInvoice
	err := r.db.WithContext(ctx).
		Preload("LineItems", orderLines).
		Where("status = ? AND amount_due > ?", invoicedomain.InvoiceStatusFinal, 0).
		Order("finalized_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountNumbersWithPrefix(ctx context.Context, kind invoicedomain.NumberKind, prefix string) (int64, error) {
	var (
		model  any    = &invoicedomain.GuestInvoice{}
		column string = "invoice_number"
	)
	if kind == invoicedomain.NumberKindNote {
		model, column = &invoicedomain.AdjustmentNote{}, "note_number"
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *repo) CreateNote(ctx context.Context, note *invoicedomain.AdjustmentNote) error {
	return r.notes.Create(ctx, note)
}

func (r *repo) ListNotes(ctx context.Context, invoiceID snowflake.ID) ([]invoicedomain.AdjustmentNote, error) {
	items, err := r.notes.Find(ctx, &invoicedomain.AdjustmentNote{InvoiceID: invoiceID},
		option.WithSortBy(option.QuerySortBy{SortBy: "issued_at", Allow: map[string]bool{"issued_at": true}}),
	)
	if err != nil {
		return nil, err
	}
	out := make([]invoicedomain.AdjustmentNote, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *repo) first(stmt *gorm.DB) (*invoicedomain.GuestInvoice, error) {
	var inv invoicedomain.GuestInvoice
	err := stmt.Preload("LineItems", orderLines).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("posted_at ASC").Order("id ASC")
}
