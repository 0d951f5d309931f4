// Package domain holds receivables aging types.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidBuckets = errors.New("invalid_aging_buckets")

// Entry is one open receivable.
type Entry struct {
	DocumentID     string          `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	Party          string          `json:"party"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
}

// AgedEntry is an entry classified against the report date.
type AgedEntry struct {
	Entry
	DaysOverdue int    `json:"days_overdue"`
	Bucket      string `json:"bucket"`
}

type BucketSummary struct {
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// PartySummary holds one party's amounts per bucket, in bucket order.
type PartySummary struct {
	Party   string          `json:"party"`
	Buckets []BucketSummary `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
}

type Report struct {
	AsOf    time.Time       `json:"as_of"`
	Buckets []BucketSummary `json:"buckets"`
	Parties []PartySummary  `json:"parties"`
	Entries []AgedEntry     `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}
