package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"castellan-hq/castellan/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Namespace: "test",
		Subsystem: "storage",
	}
}

func TestNewStorageMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	sm := NewStorageMetrics(testConfig(), registry)

	if sm == nil {
		t.Fatal("NewStorageMetrics() returned nil")
	}

	// CounterVecs with no observations gather as zero families; record one
	// sample per metric so every name shows up.
	sm.RecordDecodeFailure("json")
	sm.RecordPolicyRead("json")
	sm.RecordPolicySave("json")
	sm.RecordRepositoryBuild("json", "single")
	sm.RecordDelegationOp("create")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 5 {
		t.Fatalf("registered metric families = %d, want 5", len(families))
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "test_storage_") {
			t.Errorf("metric %q missing namespace/subsystem prefix", mf.GetName())
		}
	}
}

func TestStorageMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	sm := NewStorageMetrics(testConfig(), registry)

	sm.RecordDecodeFailure("yaml")
	sm.RecordDecodeFailure("yaml")
	if got := testutil.ToFloat64(sm.decodeFailures.WithLabelValues("yaml")); got != 2 {
		t.Errorf("decode failures = %v, want 2", got)
	}

	sm.RecordPolicyRead("json")
	if got := testutil.ToFloat64(sm.policyReads.WithLabelValues("json")); got != 1 {
		t.Errorf("policy reads = %v, want 1", got)
	}

	sm.RecordPolicySave("toml")
	if got := testutil.ToFloat64(sm.policySaves.WithLabelValues("toml")); got != 1 {
		t.Errorf("policy saves = %v, want 1", got)
	}

	sm.RecordRepositoryBuild("json", "multiple")
	if got := testutil.ToFloat64(sm.repositoryBuilds.WithLabelValues("json", "multiple")); got != 1 {
		t.Errorf("repository builds = %v, want 1", got)
	}

	sm.RecordDelegationOp("revoke")
	if got := testutil.ToFloat64(sm.delegationOps.WithLabelValues("revoke")); got != 1 {
		t.Errorf("delegation operations = %v, want 1", got)
	}

	// Labels are independent.
	if got := testutil.ToFloat64(sm.decodeFailures.WithLabelValues("json")); got != 0 {
		t.Errorf("decode failures for untouched driver = %v, want 0", got)
	}
}

func TestNilStorageMetricsRecordsNothing(t *testing.T) {
	var sm *StorageMetrics

	sm.RecordDecodeFailure("json")
	sm.RecordPolicyRead("json")
	sm.RecordPolicySave("json")
	sm.RecordRepositoryBuild("json", "single")
	sm.RecordDelegationOp("create")
}
