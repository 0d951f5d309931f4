package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrItemNotFound    = errors.New("inventory_item_not_found")
	ErrInvalidKind     = errors.New("invalid_item_kind")
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrInvalidName     = errors.New("invalid_item_name")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidCost     = errors.New("invalid_unit_cost")
	ErrDuplicateSKU    = errors.New("duplicate_sku")
	ErrDuplicateGRN    = errors.New("duplicate_grn")
	ErrEmptyGRN        = errors.New("empty_grn")
)
