package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(pollerLeaseHeld, pollerLeaseLostTotal)
}

var (
	pollerLeaseHeld = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_lease_held",
			Help: "1 while this process holds the getUpdates lease.",
		},
	)

	pollerLeaseLostTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_lease_lost_total",
			Help: "Times the lease was lost while polling.",
		},
	)
)

func SetPollerLeaseHeld(held bool) {
	if held {
		pollerLeaseHeld.Set(1)
		return
	}
	pollerLeaseHeld.Set(0)
}

func IncPollerLeaseLost() { pollerLeaseLostTotal.Inc() }
