package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
)

// InvoiceTaxLine is the invoice-level total for one (tax type, rate) pair.
type InvoiceTaxLine struct {
	TaxType       taxdomain.TaxType `json:"tax_type"`
	TaxName       string            `json:"tax_name"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	TaxableAmount decimal.Decimal   `json:"taxable_amount"`
	TaxAmount     decimal.Decimal   `json:"tax_amount"`
	IsInclusive   bool              `json:"is_inclusive"`
	Breakdown     []TaxBreakdown    `json:"breakdown"`
}

// Key is the consolidation key of the tax line.
func (t InvoiceTaxLine) Key() string {
	return TaxLineKey(t.TaxType, t.TaxRate)
}

// TaxLineKey formats the (type, rate) bucket key.
func TaxLineKey(taxType taxdomain.TaxType, rate decimal.Decimal) string {
	return string(taxType) + "-" + rate.String()
}

// TaxBreakdown links a consolidated tax line back to a contributing line.
type TaxBreakdown struct {
	LineItemID    snowflake.ID    `json:"line_item_id"`
	Description   string          `json:"description"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}
