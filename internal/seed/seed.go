// Package seed installs the default tax policy on an empty database.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"go.uber.org/zap"
)

const (
	defaultVATName           = "VAT"
	defaultServiceChargeName = "Service Charge"
)

var (
	defaultVATRate           = decimal.NewFromInt(15)
	defaultServiceChargeRate = decimal.NewFromInt(10)
)

// EnsureDefaultTaxes creates a 15% VAT and a 10% taxable service charge
// when no configuration of either kind exists yet. It never touches an
// existing policy.
func EnsureDefaultTaxes(ctx context.Context, repo taxdomain.Repository, node *snowflake.Node, now time.Time, log *zap.Logger) error {
	if repo == nil || node == nil {
		return errors.New("seed: tax repository and id node are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	taxes, err := repo.ListTaxes(ctx, taxdomain.ListRequest{})
	if err != nil {
		return err
	}
	if len(taxes) == 0 {
		vat := &taxdomain.TaxConfiguration{
			ID:                     node.Generate(),
			Name:                   defaultVATName,
			Type:                   taxdomain.TaxTypeVAT,
			Rate:                   defaultVATRate,
			IsActive:               true,
			CalculationOrder:       1,
			TaxableOnServiceCharge: true,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := vat.Validate(); err != nil {
			return err
		}
		if err := repo.CreateTax(ctx, vat); err != nil {
			return err
		}
		log.Info("seeded default tax", zap.String("tax_config_id", vat.ID.String()), zap.String("rate", vat.Rate.String()))
	}

	current, err := repo.GetActiveServiceCharge(ctx)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}
	sc := &taxdomain.ServiceChargeConfiguration{
		ID:        node.Generate(),
		Name:      defaultServiceChargeName,
		Rate:      defaultServiceChargeRate,
		IsActive:  true,
		IsTaxable: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	if err := repo.SaveServiceCharge(ctx, sc); err != nil {
		return err
	}
	log.Info("seeded default service charge", zap.String("service_charge_id", sc.ID.String()), zap.String("rate", sc.Rate.String()))
	return nil
}
