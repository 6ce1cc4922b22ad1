// Package metrics provides Prometheus instrumentation for the storage layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"castellan-hq/castellan/pkg/config"
)

// StorageMetrics tracks metrics related to policy and delegation storage.
//
// Metrics:
//   - castellan_storage_decode_failures_total: Decode failures by driver
//   - castellan_storage_policy_reads_total: Policy reads by driver
//   - castellan_storage_policy_saves_total: Policy saves by driver
//   - castellan_storage_repository_builds_total: Repository instances built, by driver and file mode
//   - castellan_storage_delegation_operations_total: Delegation store operations by kind
//
// A nil *StorageMetrics is valid and records nothing, so the storage layer
// works without a registry wired in.
type StorageMetrics struct {
	decodeFailures   *prometheus.CounterVec
	policyReads      *prometheus.CounterVec
	policySaves      *prometheus.CounterVec
	repositoryBuilds *prometheus.CounterVec
	delegationOps    *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics with the provided
// registry.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		decodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decode_failures_total",
				Help:      "Total number of policy file decode failures",
			},
			[]string{"driver"},
		),

		policyReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_reads_total",
				Help:      "Total number of policy read operations",
			},
			[]string{"driver"},
		),

		policySaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_saves_total",
				Help:      "Total number of policy save operations",
			},
			[]string{"driver"},
		),

		repositoryBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "repository_builds_total",
				Help:      "Total number of repository instances built",
			},
			[]string{"driver", "file_mode"},
		),

		delegationOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "delegation_operations_total",
				Help:      "Total number of delegation store operations",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		sm.decodeFailures,
		sm.policyReads,
		sm.policySaves,
		sm.repositoryBuilds,
		sm.delegationOps,
	)

	return sm
}

// RecordDecodeFailure increments the decode failure counter for a driver.
func (m *StorageMetrics) RecordDecodeFailure(driver string) {
	if m == nil {
		return
	}
	m.decodeFailures.WithLabelValues(driver).Inc()
}

// RecordPolicyRead increments the read counter for a driver.
func (m *StorageMetrics) RecordPolicyRead(driver string) {
	if m == nil {
		return
	}
	m.policyReads.WithLabelValues(driver).Inc()
}

// RecordPolicySave increments the save counter for a driver.
func (m *StorageMetrics) RecordPolicySave(driver string) {
	if m == nil {
		return
	}
	m.policySaves.WithLabelValues(driver).Inc()
}

// RecordRepositoryBuild increments the build counter for a driver and file
// mode.
func (m *StorageMetrics) RecordRepositoryBuild(driver, fileMode string) {
	if m == nil {
		return
	}
	m.repositoryBuilds.WithLabelValues(driver, fileMode).Inc()
}

// RecordDelegationOp increments the delegation operation counter.
func (m *StorageMetrics) RecordDelegationOp(operation string) {
	if m == nil {
		return
	}
	m.delegationOps.WithLabelValues(operation).Inc()
}
