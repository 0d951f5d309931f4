package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	ListItems(ctx context.Context, kind ItemKind) ([]Reorderable, error)
	PlanReorders(ctx context.Context) (Plan, error)
	ReceiveGoods(ctx context.Context, req ReceiveGoodsRequest) (*GoodsReceivedNote, error)
}

type CreateItemRequest struct {
	SKU                 string          `json:"sku"`
	Name                string          `json:"name"`
	Kind                ItemKind        `json:"kind"`
	Unit                string          `json:"unit"`
	Classifier          string          `json:"classifier"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	ReorderLevel        decimal.Decimal `json:"reorder_level"`
	ReorderQuantity     decimal.Decimal `json:"reorder_quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	PreferredSupplierID string          `json:"preferred_supplier_id,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
}

type ReceiveGoodsRequest struct {
	GRNNumber  string    `json:"grn_number"`
	SupplierID string    `json:"supplier_id,omitempty"`
	Lines      []GRNLine `json:"lines"`
	ReceivedBy string    `json:"received_by"`
}
