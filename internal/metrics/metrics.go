package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	StoredCompositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegrid_stored_compositions",
		Help: "Number of compositions held by the store",
	})
	CachedSounds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegrid_cached_sounds",
		Help: "Number of encoded sounds held by the sound cache",
	})
	RendersInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegrid_renders_in_flight",
		Help: "Number of renders currently running",
	})
)

// Counters
var (
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tonegrid_renders_total",
		Help: "Total renders by outcome",
	}, []string{"outcome"})
	SamplesRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tonegrid_samples_rendered_total",
		Help: "Total sample frames synthesized",
	})
	BytesEncodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tonegrid_bytes_encoded_total",
		Help: "Total wave bytes produced, headers included",
	})
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tonegrid_cache_lookups_total",
		Help: "Sound cache lookups by result",
	}, []string{"result"})
)

// Histograms
var (
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tonegrid_render_duration_ms",
		Help:    "Render duration in milliseconds by stage",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"stage"})
)
