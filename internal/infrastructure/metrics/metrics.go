package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huddle_rooms_active",
		Help: "Number of rooms currently tracked by the registry.",
	})

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_rooms_created_total",
		Help: "Total number of room create operations.",
	})

	RoomsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_rooms_expired_total",
		Help: "Total number of rooms reclaimed by the expiry sweeper.",
	})

	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huddle_connections_active",
		Help: "Number of open relay connections.",
	})

	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_messages_relayed_total",
		Help: "Total number of chat messages accepted for broadcast.",
	})

	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_messages_dropped_total",
		Help: "Total number of per-recipient deliveries dropped on full send buffers.",
	})
)

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
