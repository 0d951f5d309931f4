package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/hotelpms/internal/inventory/domain"
	"github.com/smallbiznis/hotelpms/pkg/db/option"
	"github.com/smallbiznis/hotelpms/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db    *gorm.DB
	items repository.Repository[inventorydomain.Item]
	grns  repository.Repository[inventorydomain.GoodsReceivedNote]
}

func NewRepository(db *gorm.DB) inventorydomain.Repository {
	return &repo{
		db:    db,
		items: repository.ProvideStore[inventorydomain.Item](db),
		grns:  repository.ProvideStore[inventorydomain.GoodsReceivedNote](db),
	}
}

func (r *repo) WithTx(tx *gorm.DB) inventorydomain.Repository {
	return NewRepository(tx)
}

func (r *repo) Create(ctx context.Context, item *inventorydomain.Item) error {
	return r.items.Create(ctx, item)
}

func (r *repo) FindBySKU(ctx context.Context, sku string) (*inventorydomain.Item, error) {
	return r.items.FindOne(ctx, &inventorydomain.Item{SKU: normalizeSKU(sku)})
}

func (r *repo) FindBySKUForUpdate(ctx context.Context, sku string) (*inventorydomain.Item, error) {
	stmt := r.db.WithContext(ctx).Where("sku = ?", normalizeSKU(sku))
	if r.db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item inventorydomain.Item
	if err := stmt.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, kind inventorydomain.ItemKind) ([]inventorydomain.Item, error) {
	items, err := r.items.Find(ctx, &inventorydomain.Item{Kind: kind},
		option.WithSortBy(option.QuerySortBy{SortBy: "sku", OrderBy: "asc", Allow: map[string]bool{"sku": true}}),
	)
	if err != nil {
		return nil, err
	}
	out := make([]inventorydomain.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *repo) UpdateStock(ctx context.Context, item *inventorydomain.Item, stock, unitCost decimal.Decimal, receivedAt time.Time) error {
	err := r.items.Update(ctx, item.ID, map[string]any{
		"current_stock":    stock,
		"unit_cost":        unitCost,
		"last_received_at": receivedAt,
		"updated_at":       receivedAt,
	})
	if err != nil {
		return err
	}
	item.CurrentStock = stock
	item.UnitCost = unitCost
	item.LastReceivedAt = &receivedAt
	item.UpdatedAt = receivedAt
	return nil
}

func (r *repo) CreateGRN(ctx context.Context, grn *inventorydomain.GoodsReceivedNote) error {
	return r.grns.Create(ctx, grn)
}

func (r *repo) FindGRNByNumber(ctx context.Context, number string) (*inventorydomain.GoodsReceivedNote, error) {
	return r.grns.FindOne(ctx, &inventorydomain.GoodsReceivedNote{GRNNumber: strings.TrimSpace(number)})
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
