package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var TicksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mxarb_ticks_total",
		Help: "decoded upstream price ticks",
	},
	[]string{"feed"},
)

var MalformedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mxarb_malformed_messages_total",
		Help: "upstream messages discarded as malformed",
	},
	[]string{"feed"},
)

var ReconnectsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mxarb_reconnects_total",
		Help: "upstream reconnect attempts",
	},
	[]string{"feed"},
)

var SubscribesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mxarb_subscribe_commands_total",
		Help: "upstream subscribe commands sent",
	},
	[]string{"feed"},
)

var KeepAliveFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "mxarb_keepalive_failures_total",
		Help: "futures keep-alive sends that failed",
	},
)

var BroadcastsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "mxarb_broadcasts_total",
		Help: "price messages fanned out to subscribers",
	},
)

var DroppedClients = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "mxarb_dropped_subscribers_total",
		Help: "subscribers removed after a failed write",
	},
)

var Subscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "mxarb_subscribers",
		Help: "connected downstream subscribers",
	},
)

// NewRegistry registers every collector plus a gauge reading tracked().
func NewRegistry(tracked func() int) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		TicksTotal,
		MalformedTotal,
		ReconnectsTotal,
		SubscribesTotal,
		KeepAliveFailures,
		BroadcastsTotal,
		DroppedClients,
		Subscribers,
		collectors.NewGoCollector(),
	)
	if tracked != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "mxarb_tracked_assets",
				Help: "assets with at least one side known",
			},
			func() float64 { return float64(tracked()) },
		))
	}
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
