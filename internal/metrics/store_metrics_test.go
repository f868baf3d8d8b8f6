package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestNewStoreMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStoreMetricsWithRegisterer(reg)

	if metrics.commits == nil || metrics.rollbacks == nil || metrics.serviceFailures == nil {
		t.Fatal("expected collectors to be initialized")
	}

	// Registering again reuses the existing collectors.
	again := NewStoreMetricsWithRegisterer(reg)
	metrics.RecordCommit()
	if got := counterValue(t, again.commits); got != 1 {
		t.Fatalf("expected shared commit counter, got %v", got)
	}
}

func TestStoreMetrics_Record(t *testing.T) {
	metrics := NewStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordCommit()
	metrics.RecordCommit()
	metrics.RecordRollback()
	metrics.RecordSave(3, 2*time.Millisecond)
	metrics.RecordServiceFailure("create_game", "conflict")

	if got := counterValue(t, metrics.commits); got != 2 {
		t.Errorf("expected 2 commits, got %v", got)
	}
	if got := counterValue(t, metrics.rollbacks); got != 1 {
		t.Errorf("expected 1 rollback, got %v", got)
	}
	if got := counterValue(t, metrics.savedChanges); got != 3 {
		t.Errorf("expected 3 saved changes, got %v", got)
	}
	if got := counterValue(t, metrics.serviceFailures.WithLabelValues("create_game", "conflict")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}

	var hist dto.Metric
	if err := metrics.saveDuration.Write(&hist); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if hist.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("expected 1 save observation, got %d", hist.GetHistogram().GetSampleCount())
	}
}

func TestStoreMetrics_NilIsNoop(t *testing.T) {
	var metrics *StoreMetrics
	metrics.RecordCommit()
	metrics.RecordRollback()
	metrics.RecordSave(1, time.Millisecond)
	metrics.RecordServiceFailure("op", "validation")
}
