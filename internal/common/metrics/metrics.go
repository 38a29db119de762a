// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConfigLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_config_loads_total",
			Help: "Config documents loaded, by source kind and result",
		},
		[]string{"source", "result"},
	)

	EngineInits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_engine_inits_total",
			Help: "Engine init calls by template and result",
		},
		[]string{"template", "result"},
	)

	LocationSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_location_selections_total",
			Help: "Locations selected through the engine",
		},
		[]string{"template"},
	)

	SitesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_sites_created_total",
			Help: "Sites scaffolded by the new command",
		},
		[]string{"template", "mode"},
	)

	ExportBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pi_export_bytes",
			Help:    "Size of exported site bundles in bytes",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
		},
		[]string{"mode"},
	)

	PreviewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_preview_requests_total",
			Help: "Preview API requests by route and status",
		},
		[]string{"route", "status"},
	)

	LocationsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pi_locations_loaded",
			Help: "Locations in the most recently loaded config",
		},
	)
)
