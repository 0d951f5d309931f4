package domain

import "errors"

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidTaxType = errors.New("invalid_tax_type")
	ErrInvalidTaxRate = errors.New("invalid_tax_rate")
)
