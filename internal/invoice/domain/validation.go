package domain

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one finding of the invoice validator.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type LineItemValidation struct {
	LineItemID snowflake.ID      `json:"line_item_id"`
	IsValid    bool              `json:"is_valid"`
	Errors     []ValidationIssue `json:"errors"`
}

// ValidationResult is the advisory outcome of validating an invoice.
type ValidationResult struct {
	IsValid                  bool                 `json:"is_valid"`
	Errors                   []ValidationIssue    `json:"errors"`
	Warnings                 []ValidationIssue    `json:"warnings"`
	LineItemValidations      []LineItemValidation `json:"line_item_validations"`
	TaxCalculationVerified   bool                 `json:"tax_calculation_verified"`
	TotalCalculationVerified bool                 `json:"total_calculation_verified"`
	PaymentBalanceVerified   bool                 `json:"payment_balance_verified"`
}

// HasError reports whether an error was raised for field.
func (r ValidationResult) HasError(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// FieldError is a rejected field of a source record.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SourceRecordError is returned when a folio record cannot be turned into an
// invoice line. It matches ErrInvalidSourceRecord with errors.Is.
type SourceRecordError struct {
	Source string
	Fields []FieldError
}

func (e *SourceRecordError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidSourceRecord, e.Source, strings.Join(parts, "; "))
}

func (e *SourceRecordError) Unwrap() error { return ErrInvalidSourceRecord }

// InvalidInvoiceError carries the validation result that blocked finalization.
type InvalidInvoiceError struct {
	Result ValidationResult
}

func (e *InvalidInvoiceError) Error() string {
	fields := make([]string, 0, len(e.Result.Errors))
	for _, issue := range e.Result.Errors {
		fields = append(fields, issue.Field)
	}
	return fmt.Sprintf("%s: %s", ErrInvoiceInvalid, strings.Join(fields, ","))
}

func (e *InvalidInvoiceError) Unwrap() error { return ErrInvoiceInvalid }
