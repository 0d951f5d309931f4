package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, item *Item) error
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindBySKUForUpdate(ctx context.Context, sku string) (*Item, error)
	List(ctx context.Context, kind ItemKind) ([]Item, error)
	UpdateStock(ctx context.Context, item *Item, stock, unitCost decimal.Decimal, receivedAt time.Time) error

	CreateGRN(ctx context.Context, grn *GoodsReceivedNote) error
	FindGRNByNumber(ctx context.Context, number string) (*GoodsReceivedNote, error)
}
