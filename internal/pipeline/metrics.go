package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"actas/internal/model"
)

// Metrics records per-document pipeline outcomes.
type Metrics struct {
	documents *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actas_documents_processed_total",
				Help: "Documents processed by the extraction pipeline, by status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actas_document_duration_seconds",
			Help:    "Time spent extracting fields from one document.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	for _, c := range []prometheus.Collector{m.documents, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(status model.Status, d time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(string(status)).Inc()
	m.duration.Observe(d.Seconds())
}
