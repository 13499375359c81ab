package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "budgetchat_joined_users",
		Help: "Number of users currently in the room",
	})

	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "budgetchat_connections_total",
		Help: "Total accepted connections",
	})

	RejectedNamesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "budgetchat_rejected_names_total",
		Help: "Total handshakes closed because of an invalid name",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetchat_messages_total",
		Help: "Total broadcasts by kind",
	}, []string{"kind"}) // chat|join|part

	DeliveryFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetchat_delivery_failures_total",
		Help: "Total per-recipient delivery failures by reason",
	}, []string{"reason"}) // full|closed|other

	BroadcastDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "budgetchat_broadcast_seconds",
		Help:    "Time to fan out one broadcast",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(RejectedNamesTotal)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(DeliveryFailuresTotal)
	prometheus.MustRegister(BroadcastDuration)
}
