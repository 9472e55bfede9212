package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CompMetrics covers the engine's three hot paths: volume capture,
// calculation runs and the payout state machine.
type CompMetrics struct {
	VolumeEntriesTotal  prometheus.CounterVec
	VolumeCVTotal       prometheus.CounterVec
	OrderReversalsTotal prometheus.Counter

	RunsTotal       prometheus.CounterVec
	RunDuration     prometheus.HistogramVec
	LineItemsTotal  prometheus.CounterVec
	LineItemsAmount prometheus.CounterVec

	PayoutTransitionsTotal prometheus.CounterVec
	PayoutAmountTotal      prometheus.CounterVec
	ExecutorErrorsTotal    prometheus.Counter
}

func NewCompMetrics() *CompMetrics {
	return &CompMetrics{
		VolumeEntriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_entries_total",
				Help: "Total number of volume ledger entries appended",
			},
			[]string{"reversal"},
		),

		VolumeCVTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_cv_total",
				Help: "Total commissionable volume appended",
			},
			[]string{"reversal"},
		),

		OrderReversalsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "order_reversals_total",
				Help: "Total number of reversed orders",
			},
		),

		RunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculation_runs_total",
				Help: "Total number of period calculation runs by outcome",
			},
			[]string{"outcome"},
		),

		RunDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calculation_run_duration_seconds",
				Help:    "Duration of period calculation runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"outcome"},
		),

		LineItemsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_line_items_total",
				Help: "Total number of commission line items written",
			},
			[]string{"type"},
		),

		LineItemsAmount: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_line_items_amount_total",
				Help: "Total commission amount written per type",
			},
			[]string{"type"},
		),

		PayoutTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_transitions_total",
				Help: "Total payout status transitions",
			},
			[]string{"from", "to"},
		),

		PayoutAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_amount_total",
				Help: "Total requested payout amount by terminal status",
			},
			[]string{"status"},
		),

		ExecutorErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payout_executor_errors_total",
				Help: "Total payout executor call failures",
			},
		),
	}
}

func (m *CompMetrics) RecordVolumeEntry(cv float64, reversal bool) {
	label := "false"
	if reversal {
		label = "true"
	}
	m.VolumeEntriesTotal.WithLabelValues(label).Inc()
	m.VolumeCVTotal.WithLabelValues(label).Add(cv)
}

func (m *CompMetrics) RecordRun(outcome string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

func (m *CompMetrics) RecordLineItem(itemType string, amount float64) {
	m.LineItemsTotal.WithLabelValues(itemType).Inc()
	m.LineItemsAmount.WithLabelValues(itemType).Add(amount)
}

func (m *CompMetrics) RecordPayoutTransition(from, to string) {
	m.PayoutTransitionsTotal.WithLabelValues(from, to).Inc()
}
