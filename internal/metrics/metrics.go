// Package metrics exposes the viewer's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ticks counts frame ticks run by viewer loops.
	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitegraph_ticks_total",
			Help: "Total number of frame ticks",
		},
	)

	// Redraws counts ticks whose view-models changed.
	Redraws = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitegraph_redraws_total",
			Help: "Total number of ticks that produced a visual change",
		},
	)

	// LayoutConverged is 1 once the layout has come to rest.
	LayoutConverged = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitegraph_layout_converged",
			Help: "Whether the force layout has converged (1) or is still moving (0)",
		},
	)

	// TickSeconds tracks how long one tick takes.
	TickSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitegraph_tick_seconds",
			Help:    "Duration of one frame tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	// GraphNodes is the node count of the loaded document.
	GraphNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitegraph_graph_nodes",
			Help: "Number of nodes in the loaded graph document",
		},
	)
)

func init() {
	prometheus.MustRegister(Ticks)
	prometheus.MustRegister(Redraws)
	prometheus.MustRegister(LayoutConverged)
	prometheus.MustRegister(TickSeconds)
	prometheus.MustRegister(GraphNodes)
}

// ObserveTick records one tick.
func ObserveTick(d time.Duration, dirty, converged bool) {
	Ticks.Inc()
	TickSeconds.Observe(d.Seconds())
	if dirty {
		Redraws.Inc()
	}
	if converged {
		LayoutConverged.Set(1)
	} else {
		LayoutConverged.Set(0)
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
