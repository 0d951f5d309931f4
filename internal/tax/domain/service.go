package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Resolver returns the tax policy currently in force.
type Resolver interface {
	Resolve(ctx context.Context) (RateSet, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*TaxConfiguration, error)
	List(ctx context.Context, req ListRequest) ([]TaxConfiguration, error)
	Update(ctx context.Context, req UpdateRequest) (*TaxConfiguration, error)
	Deactivate(ctx context.Context, id string) (*TaxConfiguration, error)
	SetServiceCharge(ctx context.Context, req ServiceChargeRequest) (*ServiceChargeConfiguration, error)
}

type ListRequest struct {
	Type     TaxType
	IsActive *bool
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Name                   string          `json:"name"`
	Type                   TaxType         `json:"type"`
	Rate                   decimal.Decimal `json:"rate"`
	IsInclusive            bool            `json:"is_inclusive"`
	IsCompoundTax          bool            `json:"is_compound_tax"`
	AppliesTo              []Department    `json:"applies_to"`
	CalculationOrder       int             `json:"calculation_order"`
	TaxableOnServiceCharge bool            `json:"taxable_on_service_charge"`
	ExemptCategories       []string        `json:"exempt_categories"`
	IsActive               *bool           `json:"is_active"`
}

type UpdateRequest struct {
	ID                     string           `json:"id"`
	Name                   *string          `json:"name,omitempty"`
	Rate                   *decimal.Decimal `json:"rate,omitempty"`
	IsCompoundTax          *bool            `json:"is_compound_tax,omitempty"`
	AppliesTo              []Department     `json:"applies_to,omitempty"`
	CalculationOrder       *int             `json:"calculation_order,omitempty"`
	TaxableOnServiceCharge *bool            `json:"taxable_on_service_charge,omitempty"`
	ExemptCategories       []string         `json:"exempt_categories,omitempty"`
}

type ServiceChargeRequest struct {
	Name             string          `json:"name"`
	Rate             decimal.Decimal `json:"rate"`
	AppliesTo        []Department    `json:"applies_to"`
	IsTaxable        bool            `json:"is_taxable"`
	ExemptCategories []string        `json:"exempt_categories"`
}
