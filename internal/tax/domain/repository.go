package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	ListActiveTaxes(ctx context.Context) ([]TaxConfiguration, error)
	ListTaxes(ctx context.Context, filter ListRequest) ([]TaxConfiguration, error)
	FindTaxByID(ctx context.Context, id snowflake.ID) (*TaxConfiguration, error)
	CreateTax(ctx context.Context, cfg *TaxConfiguration) error
	UpdateTax(ctx context.Context, cfg *TaxConfiguration) error

	GetActiveServiceCharge(ctx context.Context) (*ServiceChargeConfiguration, error)
	SaveServiceCharge(ctx context.Context, cfg *ServiceChargeConfiguration) error
}
