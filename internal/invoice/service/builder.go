package service

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hotelpms/internal/clock"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	taxservice "github.com/smallbiznis/hotelpms/internal/tax/service"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// categories that never attract tax
var nonTaxableCategories = []string{"advance-deposit", "refund"}

// Builder turns folio postings into fully taxed invoice lines.
type Builder struct {
	engine   *taxservice.Engine
	genID    *snowflake.Node
	clock    clock.Clock
	validate *invoicedomain.SourceValidator
}

// NewBuilder uses clk to date lines posted without a date.
func NewBuilder(engine *taxservice.Engine, genID *snowflake.Node, clk clock.Clock) *Builder {
	return &Builder{
		engine:   engine,
		genID:    genID,
		clock:    clk,
		validate: invoicedomain.NewSourceValidator(),
	}
}

// WithDepartmentScope returns a builder sharing this one's validator and ID
// source but with the given department scoping.
func (b *Builder) WithDepartmentScope(enabled bool) *Builder {
	if b.engine.DepartmentScoped() == enabled {
		return b
	}
	return &Builder{
		engine:   taxservice.NewEngine(taxservice.WithDepartmentScope(enabled)),
		genID:    b.genID,
		clock:    b.clock,
		validate: b.validate,
	}
}

// FromCharge builds a line from a folio charge.
func (b *Builder) FromCharge(charge foliodomain.FolioCharge, rates taxdomain.RateSet) (invoicedomain.InvoiceLineItem, error) {
	if err := b.check("folio_charge", charge); err != nil {
		return invoicedomain.InvoiceLineItem{}, err
	}
	line := b.build(invoicedomain.ChargeFromFolio(charge), rates)
	line.SourceID = sourceID(charge.ID)
	if !charge.PostedAt.IsZero() {
		line.PostedAt = charge.PostedAt
	}
	return line, nil
}

// FromExtraService builds a line from an extra service entry.
func (b *Builder) FromExtraService(svc foliodomain.FolioExtraService, rates taxdomain.RateSet) (invoicedomain.InvoiceLineItem, error) {
	if err := b.check("folio_extra_service", svc); err != nil {
		return invoicedomain.InvoiceLineItem{}, err
	}
	line := b.build(invoicedomain.ManualCharge{
		Date:           svc.Date,
		Department:     svc.Department,
		Category:       svc.ServiceCategory,
		Description:    svc.ServiceName,
		Quantity:       svc.Quantity,
		UnitPrice:      svc.UnitPrice,
		DiscountAmount: svc.DiscountAmount,
		PostedBy:       svc.PostedBy,
	}, rates)
	line.SourceID = sourceID(svc.ID)
	if !svc.PostedAt.IsZero() {
		line.PostedAt = svc.PostedAt
	}
	return line, nil
}

// FromManual builds a line from an ad hoc charge.
func (b *Builder) FromManual(charge invoicedomain.ManualCharge, rates taxdomain.RateSet) (invoicedomain.InvoiceLineItem, error) {
	if err := b.check("manual_charge", charge); err != nil {
		return invoicedomain.InvoiceLineItem{}, err
	}
	return b.build(charge, rates), nil
}

// Recalculate recomputes the derived amounts of an existing line, keeping its
// identity. Used after a line discount changes.
func (b *Builder) Recalculate(line invoicedomain.InvoiceLineItem, rates taxdomain.RateSet) invoicedomain.InvoiceLineItem {
	line.LineTotal = money.Round2(line.Quantity.Mul(line.UnitPrice))
	line.NetAmount = line.LineTotal.Sub(line.DiscountAmount)
	b.applyTaxes(&line, rates)
	return line
}

func (b *Builder) build(charge invoicedomain.ManualCharge, rates taxdomain.RateSet) invoicedomain.InvoiceLineItem {
	date := charge.Date
	if date.IsZero() {
		date = b.clock.Now()
	}

	line := invoicedomain.InvoiceLineItem{
		ID:                      b.genID.Generate(),
		Date:                    date.UTC(),
		ItemType:                ItemTypeFor(charge.Department),
		Department:              charge.Department,
		Category:                strings.TrimSpace(charge.Category),
		Description:             strings.TrimSpace(charge.Description),
		Quantity:                charge.Quantity,
		UnitPrice:               charge.UnitPrice,
		DiscountAmount:          money.Round2(charge.DiscountAmount),
		Taxable:                 IsTaxable(charge.Description, charge.Category),
		ServiceChargeApplicable: charge.Department == taxdomain.DepartmentFNB,
		PostedBy:                strings.TrimSpace(charge.PostedBy),
		PostedAt:                date.UTC(),
	}
	line.LineTotal = money.Round2(line.Quantity.Mul(line.UnitPrice))
	line.NetAmount = line.LineTotal.Sub(line.DiscountAmount)
	b.applyTaxes(&line, rates)
	return line
}

// applyTaxes computes the service charge before tax, since a taxable service
// charge is part of the tax base.
func (b *Builder) applyTaxes(line *invoicedomain.InvoiceLineItem, rates taxdomain.RateSet) {
	input := taxdomain.LineInput{
		Department:              line.Department,
		ItemType:                string(line.ItemType),
		Taxable:                 line.Taxable,
		ServiceChargeApplicable: line.ServiceChargeApplicable,
		NetAmount:               line.NetAmount,
	}
	input.ServiceChargeAmount = b.engine.CalculateServiceCharge(input, rates.ServiceCharge)

	details := b.engine.CalculateLineTaxes(input, rates.Taxes, rates.ServiceCharge)
	line.ServiceChargeAmount = input.ServiceChargeAmount
	line.TaxLines = details
	line.TotalTax = taxservice.TotalTax(details)
	line.LineGrandTotal = line.NetAmount.Add(line.ServiceChargeAmount).Add(line.TotalTax)
}

// ItemTypeFor maps a department to its invoice item type.
func ItemTypeFor(dept taxdomain.Department) invoicedomain.ItemType {
	switch dept {
	case taxdomain.DepartmentFrontOffice:
		return invoicedomain.ItemTypeRoomCharge
	case taxdomain.DepartmentFNB, taxdomain.DepartmentKitchen:
		return invoicedomain.ItemTypeFNBRestaurant
	default:
		return invoicedomain.ItemTypeMisc
	}
}

// IsTaxable reports false for advance deposits and refunds. Categories and
// descriptions match on whole words, so "prefunded" is still taxable.
func IsTaxable(description, category string) bool {
	for _, value := range []string{category, description} {
		normalized := "-" + normalizeCategory(value) + "-"
		for _, excluded := range nonTaxableCategories {
			if strings.Contains(normalized, "-"+excluded+"-") {
				return false
			}
		}
	}
	return true
}

// normalizeCategory lowercases value and joins its words with "-".
func normalizeCategory(value string) string {
	words := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}

func (b *Builder) check(source string, record any) error {
	return b.validate.Check(source, record)
}

func sourceID(id snowflake.ID) *snowflake.ID {
	if id == 0 {
		return nil
	}
	return &id
}
