package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	taxservice "github.com/smallbiznis/hotelpms/internal/tax/service"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// Validator recomputes derived invoice fields and reports mismatches beyond
// the tolerance. It never mutates the invoice.
type Validator struct {
	tolerance decimal.Decimal
}

func NewValidator(tolerance decimal.Decimal) *Validator {
	if !tolerance.IsPositive() {
		tolerance = money.Tolerance
	}
	return &Validator{tolerance: tolerance}
}

func (v *Validator) Validate(inv *invoicedomain.GuestInvoice) invoicedomain.ValidationResult {
	result := invoicedomain.ValidationResult{
		Errors:              []invoicedomain.ValidationIssue{},
		Warnings:            []invoicedomain.ValidationIssue{},
		LineItemValidations: []invoicedomain.LineItemValidation{},
	}
	if inv == nil {
		result.Errors = append(result.Errors, issue("invoice", "invoice is missing"))
		return result
	}

	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		result.Errors = append(result.Errors, issue("invoiceNumber", "invoice number is required"))
	}
	if strings.TrimSpace(inv.GuestName) == "" {
		result.Errors = append(result.Errors, issue("guestName", "guest name is required"))
	}

	active := inv.ActiveLineItems()
	if len(active) == 0 {
		result.Errors = append(result.Errors, issue("lineItems", "at least one line item is required"))
	}

	linesValid, lineTaxValid := true, true
	for i, line := range active {
		lv := v.validateLine(i, line)
		if !lv.IsValid {
			linesValid = false
			result.Errors = append(result.Errors, lv.Errors...)
		}
		if !v.equal(taxservice.TotalTax(line.TaxLines), line.TotalTax) {
			lineTaxValid = false
		}
		result.LineItemValidations = append(result.LineItemValidations, lv)
	}

	expected := CalculateTotals(inv.LineItems, inv.Discounts, inv.Payments)

	subtotalOK := v.compare(&result, "subtotal", inv.Subtotal, expected.Subtotal)
	taxOK := v.compare(&result, "totalTax", inv.TotalTax, expected.TotalTax)
	grandOK := v.compare(&result, "grandTotal", inv.GrandTotal, expected.GrandTotal)
	dueOK := v.compare(&result, "amountDue", inv.AmountDue, expected.AmountDue)

	if expected.TotalPaid.GreaterThan(expected.GrandTotal) {
		result.Warnings = append(result.Warnings, invoicedomain.ValidationIssue{
			Field:    "totalPaid",
			Message:  fmt.Sprintf("payments exceed grand total by %s; issue a credit note", expected.TotalPaid.Sub(expected.GrandTotal).StringFixed(2)),
			Severity: invoicedomain.SeverityWarning,
		})
	}

	result.TaxCalculationVerified = taxOK && lineTaxValid
	result.TotalCalculationVerified = subtotalOK && grandOK && linesValid
	result.PaymentBalanceVerified = dueOK
	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) validateLine(i int, line invoicedomain.InvoiceLineItem) invoicedomain.LineItemValidation {
	prefix := fmt.Sprintf("lineItems[%d].", i)
	lv := invoicedomain.LineItemValidation{LineItemID: line.ID, Errors: []invoicedomain.ValidationIssue{}}

	if strings.TrimSpace(line.Description) == "" {
		lv.Errors = append(lv.Errors, issue(prefix+"description", "description is required"))
	}
	if !line.Quantity.IsPositive() {
		lv.Errors = append(lv.Errors, issue(prefix+"quantity", "quantity must be greater than zero"))
	}
	if line.UnitPrice.IsNegative() {
		lv.Errors = append(lv.Errors, issue(prefix+"unitPrice", "unit price must not be negative"))
	}
	if !v.equal(line.LineTotal, line.Quantity.Mul(line.UnitPrice)) {
		lv.Errors = append(lv.Errors, issue(prefix+"lineTotal", "line total does not equal quantity times unit price"))
	}
	if !v.equal(line.NetAmount, line.LineTotal.Sub(line.DiscountAmount)) {
		lv.Errors = append(lv.Errors, issue(prefix+"netAmount", "net amount does not equal line total less discount"))
	}
	if !v.equal(line.LineGrandTotal, line.NetAmount.Add(line.ServiceChargeAmount).Add(line.TotalTax)) {
		lv.Errors = append(lv.Errors, issue(prefix+"lineGrandTotal", "line grand total does not equal net plus service charge plus tax"))
	}

	lv.IsValid = len(lv.Errors) == 0
	return lv
}

func (v *Validator) compare(result *invoicedomain.ValidationResult, field string, stored, expected decimal.Decimal) bool {
	if v.equal(stored, expected) {
		return true
	}
	result.Errors = append(result.Errors, issue(field,
		fmt.Sprintf("stored %s does not match calculated %s", stored.StringFixed(2), expected.StringFixed(2))))
	return false
}

func (v *Validator) equal(a, b decimal.Decimal) bool {
	return money.WithinTolerance(a, b, v.tolerance)
}

func issue(field, message string) invoicedomain.ValidationIssue {
	return invoicedomain.ValidationIssue{Field: field, Message: message, Severity: invoicedomain.SeverityError}
}
