package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records outcomes of the inventory and matching flows.
type OperationMetrics struct {
	matching    *prometheus.CounterVec
	assignments *prometheus.CounterVec
	importRows  *prometheus.CounterVec
	contracts   prometheus.Counter
}

// NewOperationMetrics registers the operational metrics on the provided registerer.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	matching := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_matching_total",
		Help: "Automatic group matching attempts by outcome.",
	}, []string{"outcome"})
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "serial_assignments_total",
		Help: "Serial assignment operations by action.",
	}, []string{"action"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "serial_import_rows_total",
		Help: "Bulk serial import rows by result.",
	}, []string{"result"})
	contracts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contracts_generated_total",
		Help: "Sale contracts generated.",
	})
	reg.MustRegister(matching, assignments, importRows, contracts)
	return &OperationMetrics{
		matching:    matching,
		assignments: assignments,
		importRows:  importRows,
		contracts:   contracts,
	}
}

// IncMatching increments the matching counter for the given outcome
// ("matched", "unmatched", "skipped").
func (m *OperationMetrics) IncMatching(outcome string) {
	if m == nil || m.matching == nil {
		return
	}
	m.matching.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncAssignment increments the serial assignment counter for the given action
// ("assign", "liberate", "sell", "retire").
func (m *OperationMetrics) IncAssignment(action string) {
	if m == nil || m.assignments == nil {
		return
	}
	m.assignments.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncImportRow increments the bulk import row counter for the given result
// ("created", "duplicate", "invalid").
func (m *OperationMetrics) IncImportRow(result string) {
	if m == nil || m.importRows == nil {
		return
	}
	m.importRows.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncContract increments the generated contract counter.
func (m *OperationMetrics) IncContract() {
	if m == nil || m.contracts == nil {
		return
	}
	m.contracts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
