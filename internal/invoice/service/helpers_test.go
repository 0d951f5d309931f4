package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	taxservice "github.com/smallbiznis/hotelpms/internal/tax/service"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	return node
}

var builderNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(taxservice.NewEngine(), testNode(t), clock.NewFakeClock(builderNow))
}

func standardRates() taxdomain.RateSet {
	return taxdomain.RateSet{
		Taxes: []taxdomain.TaxConfiguration{{
			ID:                     100,
			Name:                   "VAT",
			Type:                   taxdomain.TaxTypeVAT,
			Rate:                   d("15"),
			IsActive:               true,
			CalculationOrder:       1,
			TaxableOnServiceCharge: true,
		}},
		ServiceCharge: &taxdomain.ServiceChargeConfiguration{
			ID:        200,
			Name:      "Service Charge",
			Rate:      d("10"),
			IsActive:  true,
			IsTaxable: true,
			AppliesTo: []taxdomain.Department{taxdomain.DepartmentFNB},
		},
	}
}
