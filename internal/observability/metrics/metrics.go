// Package metrics exposes prometheus instruments for invoicing and the night
// audit.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every series.
type Config struct {
	ServiceName string
	Environment string
}

const (
	InvoiceSourceFolio   = "folio"
	InvoiceSourceManual  = "manual"
	OutcomeSuccess       = "success"
	OutcomeFailure       = "failure"
	OutcomeSkipped       = "skipped"
	OutcomeRejected      = "rejected"
	AuditStageRoomCharge = "room_charge"
	AuditStageInvoice    = "invoice"
	AuditStageReconcile  = "reconcile"
)

// FinanceMetrics captures invoice lifecycle and night-audit signals.
type FinanceMetrics struct {
	invoicesCreated   *prometheus.CounterVec
	invoicesFinalized *prometheus.CounterVec
	adjustmentNotes   *prometheus.CounterVec
	auditRuns         *prometheus.CounterVec
	auditDuration     prometheus.Histogram
	roomChargesPosted prometheus.Counter
	auditInvoices     prometheus.Counter
	auditFailures     *prometheus.CounterVec
	auditOutstanding  prometheus.Gauge
}

var (
	financeMetricsOnce sync.Once
	financeMetrics     *FinanceMetrics
)

// New returns the process-wide finance metrics registered on the default
// registerer.
func New(cfg Config) *FinanceMetrics {
	financeMetricsOnce.Do(func() {
		financeMetrics = NewWithRegisterer(prometheus.DefaultRegisterer, cfg)
	})
	return financeMetrics
}

// NewWithRegisterer registers a fresh set of instruments on registerer.
func NewWithRegisterer(registerer prometheus.Registerer, cfg Config) *FinanceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "hotelpms"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &FinanceMetrics{
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hotelpms_invoices_created_total",
			Help:        "Guest invoices created by source.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		invoicesFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hotelpms_invoices_finalized_total",
			Help:        "Finalization attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		adjustmentNotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hotelpms_adjustment_notes_total",
			Help:        "Credit and debit notes issued.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		auditRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hotelpms_night_audit_runs_total",
			Help:        "Night audit runs by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		auditDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "hotelpms_night_audit_duration_seconds",
			Help:        "Night audit run latency.",
			Buckets:     []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		}),
		roomChargesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hotelpms_night_audit_room_charges_total",
			Help:        "Room charges posted by the night audit.",
			ConstLabels: constLabels,
		}),
		auditInvoices: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hotelpms_night_audit_invoices_total",
			Help:        "Departure invoices generated by the night audit.",
			ConstLabels: constLabels,
		}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hotelpms_night_audit_failures_total",
			Help:        "Per-folio night audit failures by stage and reason.",
			ConstLabels: constLabels,
		}, []string{"stage", "reason"}),
		auditOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hotelpms_night_audit_outstanding_invoices",
			Help:        "Final invoices with an amount due at the last audit.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.invoicesCreated,
		m.invoicesFinalized,
		m.adjustmentNotes,
		m.auditRuns,
		m.auditDuration,
		m.roomChargesPosted,
		m.auditInvoices,
		m.auditFailures,
		m.auditOutstanding,
	)
	return m
}

func (m *FinanceMetrics) IncInvoiceCreated(source string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(source).Inc()
}

func (m *FinanceMetrics) IncInvoiceFinalized(outcome string) {
	if m == nil {
		return
	}
	m.invoicesFinalized.WithLabelValues(outcome).Inc()
}

func (m *FinanceMetrics) IncAdjustmentNote(noteType string) {
	if m == nil {
		return
	}
	m.adjustmentNotes.WithLabelValues(noteType).Inc()
}

func (m *FinanceMetrics) ObserveAuditRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.auditRuns.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.auditDuration.Observe(duration.Seconds())
	}
}

func (m *FinanceMetrics) AddRoomChargesPosted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.roomChargesPosted.Add(float64(n))
}

func (m *FinanceMetrics) AddAuditInvoices(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.auditInvoices.Add(float64(n))
}

func (m *FinanceMetrics) IncAuditFailure(stage string, err error) {
	if m == nil {
		return
	}
	m.auditFailures.WithLabelValues(stage, ClassifyReason(err)).Inc()
}

func (m *FinanceMetrics) SetOutstanding(n int) {
	if m == nil {
		return
	}
	m.auditOutstanding.Set(float64(n))
}
