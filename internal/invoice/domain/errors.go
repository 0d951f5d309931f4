package domain

import "errors"

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("invoice_not_found")
	ErrLineItemNotFound     = errors.New("line_item_not_found")
	ErrInvalidSourceRecord  = errors.New("invalid_source_record")
	ErrInvoiceInvalid       = errors.New("invoice_invalid")
	ErrInvoiceImmutable     = errors.New("invoice_immutable")
	ErrInvoiceNotFinal      = errors.New("invoice_not_final")
	ErrInvoiceVoided        = errors.New("invoice_voided")
	ErrInvalidGuestName     = errors.New("invalid_guest_name")
	ErrInvalidDiscount      = errors.New("invalid_discount")
	ErrInvalidPayment       = errors.New("invalid_payment")
	ErrInvalidNoteType      = errors.New("invalid_note_type")
	ErrInvalidReason        = errors.New("invalid_reason")
	ErrEmptyInvoice         = errors.New("empty_invoice")
	ErrFolioAlreadyInvoiced = errors.New("folio_already_invoiced")
)
