package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations *prometheus.CounterVec
	escalations *prometheus.CounterVec
	vetoes      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesage_evaluations_total",
				Help: "Completed evaluations by ticker and final action",
			},
			[]string{"ticker", "action"},
		),
		escalations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesage_escalations_total",
				Help: "Escalated signals by arbitration outcome",
			},
			[]string{"ticker", "arbitrated"},
		),
		vetoes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesage_vetoes_total",
				Help: "Risk overlay vetoes by kind",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesage_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradesage_last_price",
				Help: "Last recorded price for a ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesage_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation records one completed evaluation.
func (r *Recorder) RecordEvaluation(ticker, decision string) {
	r.evaluations.WithLabelValues(ticker, decision).Inc()
}

// RecordEscalation records an escalated signal and whether arbitration succeeded.
func (r *Recorder) RecordEscalation(ticker string, arbitrated bool) {
	r.escalations.WithLabelValues(ticker, strconv.FormatBool(arbitrated)).Inc()
}

// RecordVeto records a risk overlay veto.
func (r *Recorder) RecordVeto(kind string) {
	r.vetoes.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
