// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransformsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "web_stories_html_transforms_total",
		Help: "Total number of HTML transforms applied on save, partitioned by transform.",
	}, []string{"transform"})

	StoryEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "web_stories_story_events_total",
		Help: "Total number of successful story lifecycle events, partitioned by event.",
	}, []string{"event"})

	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "web_stories_media_uploads_total",
		Help: "Total number of successful uploads, partitioned by kind.",
	}, []string{"kind"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "web_stories_http_request_duration_seconds",
		Help:    "HTTP request latency, partitioned by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Handler serves the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
