// Package domain contains stock items, purchase order drafts and goods
// received notes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ItemKind string

const (
	ItemKindFood                 ItemKind = "food"
	ItemKindAmenity              ItemKind = "amenity"
	ItemKindConstructionMaterial ItemKind = "construction-material"
	ItemKindGeneralProduct       ItemKind = "general-product"
)

// Reorderable is the view purchase planning needs of any stock item.
type Reorderable interface {
	ItemSKU() string
	ItemName() string
	Kind() ItemKind
	Stock() decimal.Decimal
	Level() decimal.Decimal
	ReorderQty() decimal.Decimal
	Cost() decimal.Decimal
	SupplierID() *snowflake.ID
}

// Item is the persisted stock record shared by all kinds. Classifier holds
// the kind-specific label: room category for amenities, project code for
// construction materials, category for general products.
type Item struct {
	ID                  snowflake.ID    `gorm:"primaryKey" json:"id"`
	SKU                 string          `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	Name                string          `gorm:"type:text;not null" json:"name"`
	Kind                ItemKind        `gorm:"type:text;not null;index" json:"kind"`
	Unit                string          `gorm:"type:text" json:"unit"`
	Classifier          string          `gorm:"type:text" json:"classifier"`
	CurrentStock        decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"current_stock"`
	ReorderLevel        decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"reorder_level"`
	ReorderQuantity     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"reorder_quantity"`
	UnitCost            decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_cost"`
	PreferredSupplierID *snowflake.ID   `gorm:"index" json:"preferred_supplier_id,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	LastReceivedAt      *time.Time      `json:"last_received_at,omitempty"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "inventory_items" }

func (i Item) ItemSKU() string             { return i.SKU }
func (i Item) ItemName() string            { return i.Name }
func (i Item) Stock() decimal.Decimal      { return i.CurrentStock }
func (i Item) Level() decimal.Decimal      { return i.ReorderLevel }
func (i Item) ReorderQty() decimal.Decimal { return i.ReorderQuantity }
func (i Item) Cost() decimal.Decimal       { return i.UnitCost }
func (i Item) SupplierID() *snowflake.ID   { return i.PreferredSupplierID }
func (i Item) NeedsReorder() bool          { return !i.CurrentStock.GreaterThan(i.ReorderLevel) }
func (i Item) expired(now time.Time) bool  { return i.ExpiryDate != nil && !i.ExpiryDate.After(now) }

type FoodItem struct {
	Item
}

func (FoodItem) Kind() ItemKind { return ItemKindFood }

// Expired reports whether the batch on hand is past its expiry date.
func (f FoodItem) Expired(now time.Time) bool { return f.expired(now) }

type Amenity struct {
	Item
}

func (Amenity) Kind() ItemKind         { return ItemKindAmenity }
func (a Amenity) RoomCategory() string { return a.Classifier }

type ConstructionMaterial struct {
	Item
}

func (ConstructionMaterial) Kind() ItemKind        { return ItemKindConstructionMaterial }
func (c ConstructionMaterial) ProjectCode() string { return c.Classifier }

type GeneralProduct struct {
	Item
}

func (GeneralProduct) Kind() ItemKind     { return ItemKindGeneralProduct }
func (g GeneralProduct) Category() string { return g.Classifier }

// AsReorderable returns the typed view of a stored item.
func AsReorderable(item Item) (Reorderable, error) {
	switch item.Kind {
	case ItemKindFood:
		return FoodItem{Item: item}, nil
	case ItemKindAmenity:
		return Amenity{Item: item}, nil
	case ItemKindConstructionMaterial:
		return ConstructionMaterial{Item: item}, nil
	case ItemKindGeneralProduct:
		return GeneralProduct{Item: item}, nil
	default:
		return nil, ErrInvalidKind
	}
}

// PurchaseOrderLine is one item to order.
type PurchaseOrderLine struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Kind      ItemKind        `json:"kind"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchaseOrderDraft groups the lines for one supplier.
type PurchaseOrderDraft struct {
	SupplierID snowflake.ID        `json:"supplier_id"`
	Lines      []PurchaseOrderLine `json:"lines"`
	Total      decimal.Decimal     `json:"total"`
}

// Plan is the outcome of reorder planning. Unassigned lines have no
// preferred supplier and need a buyer's decision.
type Plan struct {
	Orders     []PurchaseOrderDraft `json:"orders"`
	Unassigned []PurchaseOrderLine  `json:"unassigned"`
}

// GRNLine is one received item. A set UnitCost replaces the item's cost.
type GRNLine struct {
	SKU      string           `json:"sku"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// GoodsReceivedNote records stock physically received from a supplier.
type GoodsReceivedNote struct {
	ID         snowflake.ID                 `gorm:"primaryKey" json:"id"`
	GRNNumber  string                       `gorm:"type:text;not null;uniqueIndex" json:"grn_number"`
	SupplierID *snowflake.ID                `gorm:"index" json:"supplier_id,omitempty"`
	Lines      datatypes.JSONSlice[GRNLine] `gorm:"type:json" json:"lines"`
	ReceivedBy string                       `gorm:"type:text" json:"received_by"`
	ReceivedAt time.Time                    `gorm:"not null" json:"received_at"`
	CreatedAt  time.Time                    `gorm:"not null" json:"created_at"`
}

func (GoodsReceivedNote) TableName() string { return "goods_received_notes" }
