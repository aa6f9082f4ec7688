package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProcedureMetrics records run metadata for the audit procedures (join,
// aging, cutoff, reconciliation, sampling).
type ProcedureMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	findings *prometheus.CounterVec
}

// NewProcedureMetrics registers the procedure metrics on the provided registerer.
func NewProcedureMetrics(reg prometheus.Registerer) *ProcedureMetrics {
	if reg == nil {
		return &ProcedureMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "procedure_run_duration_seconds",
		Help:    "Duration of audit procedure runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_run_success",
		Help: "Successful audit procedure runs.",
	}, []string{"procedure"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_run_failure",
		Help: "Failed audit procedure runs.",
	}, []string{"procedure"})
	findings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_findings_total",
		Help: "Findings emitted by audit procedure runs.",
	}, []string{"procedure"})
	reg.MustRegister(duration, success, failure, findings)
	return &ProcedureMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		findings: findings,
	}
}

// ObserveDuration records the duration for the named procedure.
func (p *ProcedureMetrics) ObserveDuration(procedure string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(procedure)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named procedure.
func (p *ProcedureMetrics) IncSuccess(procedure string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(procedure)).Inc()
}

// IncFailure increments the failure counter for the named procedure.
func (p *ProcedureMetrics) IncFailure(procedure string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(procedure)).Inc()
}

// AddFindings counts findings emitted by the named procedure.
func (p *ProcedureMetrics) AddFindings(procedure string, count int) {
	if p == nil || p.findings == nil || count <= 0 {
		return
	}
	p.findings.WithLabelValues(normalizeLabel(procedure)).Add(float64(count))
}

func normalizeLabel(procedure string) string {
	if procedure == "" {
		return "unknown"
	}
	return procedure
}
