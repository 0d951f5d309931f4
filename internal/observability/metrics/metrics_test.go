package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: ReasonDeadlineExceeded},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: ReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "not_found", err: gorm.ErrRecordNotFound, want: ReasonNotFound},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAuditCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry, Config{ServiceName: "hotelpms", Environment: "test"})

	m.AddRoomChargesPosted(3)
	m.AddRoomChargesPosted(0)
	m.AddAuditInvoices(2)
	m.IncAuditFailure(AuditStageInvoice, &pgconn.PgError{Code: "40001"})
	m.ObserveAuditRun(OutcomeSuccess, 2*time.Second)
	m.SetOutstanding(4)

	if got := testutil.ToFloat64(m.roomChargesPosted); got != 3 {
		t.Fatalf("expected 3 room charges, got %v", got)
	}
	if got := testutil.ToFloat64(m.auditInvoices); got != 2 {
		t.Fatalf("expected 2 invoices, got %v", got)
	}
	if got := testutil.ToFloat64(m.auditFailures.WithLabelValues(AuditStageInvoice, ReasonSerializationFailure)); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.auditRuns.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 run, got %v", got)
	}
	if got := testutil.ToFloat64(m.auditOutstanding); got != 4 {
		t.Fatalf("expected outstanding 4, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *FinanceMetrics
	m.IncInvoiceCreated(InvoiceSourceManual)
	m.IncInvoiceFinalized(OutcomeRejected)
	m.ObserveAuditRun(OutcomeFailure, time.Second)
	m.IncAuditFailure(AuditStageRoomCharge, errors.New("x"))
}
