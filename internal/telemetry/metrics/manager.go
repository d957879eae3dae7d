package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterStoreOps       *prometheus.CounterVec
	CounterQuotaExceeded  prometheus.Counter
	CounterCorruptedReads prometheus.Counter
	CounterRegistrations  prometheus.Counter
	CounterLoginFailures  prometheus.Counter
	CounterCheckins       prometheus.Counter

	// gauges
	GaugeUsers prometheus.Gauge

	// histograms
	HistStoreValueBytes prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fitportal", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitportal", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterStoreOps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_operations",
		Help:      "The total number of key-value store operations",
	}, []string{"op", "result"})
	counterQuotaExceeded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_quota_exceeded",
		Help:      "The total number of writes rejected by the storage quota",
	})
	counterCorruptedReads := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_corrupted_reads",
		Help:      "The total number of stored values that failed to decode",
	})
	counterRegistrations := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "registrations",
		Help:      "The total number of registered accounts",
	})
	counterLoginFailures := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "login_failures",
		Help:      "The total number of rejected logins",
	})
	counterCheckins := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "checkins",
		Help:      "The total number of recorded check-ins",
	})

	gaugeUsers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "users",
		Help:      "Number of users in the last persisted user collection",
	})

	histStoreValueBytes := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_value_bytes",
		Help:      "Size of values written to the key-value store in bytes",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	})

	return &Manager{
		CounterStoreOps:       counterStoreOps,
		CounterQuotaExceeded:  counterQuotaExceeded,
		CounterCorruptedReads: counterCorruptedReads,
		CounterRegistrations:  counterRegistrations,
		CounterLoginFailures:  counterLoginFailures,
		CounterCheckins:       counterCheckins,
		GaugeUsers:            gaugeUsers,
		HistStoreValueBytes:   histStoreValueBytes,
	}
}
