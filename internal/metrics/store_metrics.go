package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics counts unit-of-work outcomes and service failures.
// A nil *StoreMetrics records nothing.
type StoreMetrics struct {
	commits         prometheus.Counter
	rollbacks       prometheus.Counter
	savedChanges    prometheus.Counter
	saveDuration    prometheus.Histogram
	serviceFailures *prometheus.CounterVec
}

// NewStoreMetrics registers the metrics with the default registerer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer registers the metrics with registerer.
// Registering twice returns the already registered collectors.
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		commits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gamestore_uow_commits_total",
			Help: "Total number of committed unit-of-work transactions",
		}),
		rollbacks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gamestore_uow_rollbacks_total",
			Help: "Total number of rolled back unit-of-work transactions",
		}),
		savedChanges: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gamestore_uow_saved_changes_total",
			Help: "Total number of rows written by SaveChanges",
		}),
		saveDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "gamestore_uow_save_duration_seconds",
			Help:    "Duration of SaveChanges calls in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		serviceFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "gamestore_service_failures_total",
			Help: "Total number of failed service operations by category",
		}, []string{"operation", "category"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCommit counts a committed transaction.
func (m *StoreMetrics) RecordCommit() {
	if m == nil {
		return
	}
	m.commits.Inc()
}

// RecordRollback counts a rolled back transaction.
func (m *StoreMetrics) RecordRollback() {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
}

// RecordSave records one SaveChanges call.
func (m *StoreMetrics) RecordSave(rows int, duration time.Duration) {
	if m == nil {
		return
	}
	m.savedChanges.Add(float64(rows))
	m.saveDuration.Observe(duration.Seconds())
}

// RecordServiceFailure counts a failed service operation.
func (m *StoreMetrics) RecordServiceFailure(operation, category string) {
	if m == nil {
		return
	}
	m.serviceFailures.WithLabelValues(operation, category).Inc()
}
