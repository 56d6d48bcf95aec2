package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Диалоговые метрики
	DialogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_events_total",
			Help: "Total number of dispatched conversational events",
		},
		[]string{"flow", "result"},
	)

	// Клики по промоакциям
	ClicksLoggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_clicks_logged_total",
			Help: "Total number of promotion clicks logged",
		},
		[]string{"action"},
	)

	// Прокси картинок
	MediaFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetches_total",
			Help: "Total number of media proxy fetches",
		},
		[]string{"status"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(DialogEventsTotal)
	prometheus.MustRegister(ClicksLoggedTotal)
	prometheus.MustRegister(MediaFetchesTotal)

	// Стандартные метрики Go
	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
