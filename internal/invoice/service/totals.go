package service

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// Totals holds the invoice-level aggregates derived from line items,
// discounts and payments.
type Totals struct {
	Subtotal             decimal.Decimal
	LineDiscountTotal    decimal.Decimal
	InvoiceDiscountTotal decimal.Decimal
	TotalDiscount        decimal.Decimal
	ServiceChargeAmount  decimal.Decimal
	TaxLines             []invoicedomain.InvoiceTaxLine
	TotalTax             decimal.Decimal
	GrandTotal           decimal.Decimal
	TotalPaid            decimal.Decimal
	AmountDue            decimal.Decimal
}

// CalculateTotals aggregates the non-voided lines. Invoice-level percentage
// discounts are taken from the pre-discount subtotal, so they add to line
// discounts rather than compound with them.
func CalculateTotals(lines []invoicedomain.InvoiceLineItem, discounts []invoicedomain.Discount, payments []invoicedomain.Payment) Totals {
	active := activeLines(lines)

	var t Totals
	for _, line := range active {
		t.Subtotal = t.Subtotal.Add(line.LineTotal)
		t.LineDiscountTotal = t.LineDiscountTotal.Add(line.DiscountAmount)
		t.ServiceChargeAmount = t.ServiceChargeAmount.Add(line.ServiceChargeAmount)
	}

	t.InvoiceDiscountTotal = InvoiceDiscountTotal(t.Subtotal, discounts)
	t.TotalDiscount = t.LineDiscountTotal.Add(t.InvoiceDiscountTotal)

	t.TaxLines = ConsolidateTaxLines(active)
	for _, taxLine := range t.TaxLines {
		t.TotalTax = t.TotalTax.Add(taxLine.TaxAmount)
	}

	t.GrandTotal = t.Subtotal.Sub(t.TotalDiscount).Add(t.ServiceChargeAmount).Add(t.TotalTax)
	for _, p := range payments {
		t.TotalPaid = t.TotalPaid.Add(p.Amount)
	}
	t.AmountDue = t.GrandTotal.Sub(t.TotalPaid)
	return t
}

// InvoiceDiscountTotal sums invoice-level discounts against subtotal.
func InvoiceDiscountTotal(subtotal decimal.Decimal, discounts []invoicedomain.Discount) decimal.Decimal {
	total := decimal.Zero
	for _, d := range discounts {
		if d.Scope != invoicedomain.DiscountScopeInvoice {
			continue
		}
		if d.Type == invoicedomain.DiscountTypePercentage {
			total = total.Add(money.Percent(subtotal, d.Value))
			continue
		}
		total = total.Add(d.Value)
	}
	return total
}

// ConsolidateTaxLines merges line tax details into one invoice tax line per
// (tax type, rate) pair. Buckets keep the order in which they first appear.
func ConsolidateTaxLines(lines []invoicedomain.InvoiceLineItem) []invoicedomain.InvoiceTaxLine {
	index := make(map[string]int)
	out := make([]invoicedomain.InvoiceTaxLine, 0)

	for _, line := range lines {
		if line.IsVoided {
			continue
		}
		for _, detail := range line.TaxLines {
			key := invoicedomain.TaxLineKey(detail.TaxType, detail.TaxRate)
			pos, ok := index[key]
			if !ok {
				pos = len(out)
				index[key] = pos
				out = append(out, invoicedomain.InvoiceTaxLine{
					TaxType:     detail.TaxType,
					TaxName:     detail.TaxName,
					TaxRate:     detail.TaxRate,
					IsInclusive: detail.IsInclusive,
				})
			}
			bucket := &out[pos]
			bucket.TaxableAmount = bucket.TaxableAmount.Add(detail.TaxableAmount)
			bucket.TaxAmount = bucket.TaxAmount.Add(detail.TaxAmount)
			bucket.Breakdown = append(bucket.Breakdown, invoicedomain.TaxBreakdown{
				LineItemID:    line.ID,
				Description:   line.Description,
				TaxableAmount: detail.TaxableAmount,
				TaxAmount:     detail.TaxAmount,
			})
		}
	}
	return out
}

// Apply copies the aggregates onto inv.
func (t Totals) Apply(inv *invoicedomain.GuestInvoice) {
	inv.Subtotal = t.Subtotal
	inv.TotalDiscount = t.TotalDiscount
	inv.ServiceChargeAmount = t.ServiceChargeAmount
	inv.TaxLines = t.TaxLines
	inv.TotalTax = t.TotalTax
	inv.GrandTotal = t.GrandTotal
	inv.TotalPaid = t.TotalPaid
	inv.AmountDue = t.AmountDue
}

func activeLines(lines []invoicedomain.InvoiceLineItem) []invoicedomain.InvoiceLineItem {
	out := make([]invoicedomain.InvoiceLineItem, 0, len(lines))
	for _, line := range lines {
		if !line.IsVoided {
			out = append(out, line)
		}
	}
	return out
}
