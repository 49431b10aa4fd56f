package daemon

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ecufiler/internal/history"
	"ecufiler/internal/identification"
)

var (
	dumpsSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecufiler_dumps_seen_total",
		Help: "Dumps picked up for identification",
	})

	dumpsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecufiler_dumps_handled_total",
		Help: "Dumps handled by outcome",
	}, []string{"status"})

	identifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecufiler_identify_duration_seconds",
		Help:    "Time spent reading and identifying one dump",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	dumpSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecufiler_dump_size_bytes",
		Help:    "Size of identified dumps",
		Buckets: prometheus.ExponentialBuckets(64*1024, 2, 8),
	})

	binaryFields = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecufiler_binary_fields_total",
		Help: "Binary fields recovered, by scanner phase",
	}, []string{"phase"})
)

func observeIdentification(id identification.Identification, elapsed time.Duration) {
	dumpsSeen.Inc()
	identifyDuration.Observe(elapsed.Seconds())
	if id.ReadErr == nil {
		dumpSize.Observe(float64(id.Size))
	}
	for _, phase := range id.Provenance {
		binaryFields.WithLabelValues(phase).Inc()
	}
}

func observeOutcome(status history.Status) {
	dumpsHandled.WithLabelValues(string(status)).Inc()
}
