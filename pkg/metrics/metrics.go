package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nodeimages"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// SearchRequests counts gateway outcomes: ok, misspelled, rate_limited, error.
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "search_requests_total", Help: "Image searches by outcome."},
		[]string{"outcome"},
	)
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "search_duration_seconds", Help: "Wall time of image searches including the spelling check.", Buckets: prometheus.DefBuckets},
	)

	// FavoritesWrites counts add-to-favorites outcomes: added, duplicate, invalid, error.
	FavoritesWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "favorites_writes_total", Help: "Add-to-favorites attempts by outcome."},
		[]string{"outcome"},
	)

	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "logins_total", Help: "Completed login callbacks by provider and result."},
		[]string{"provider", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(SearchRequests)
	reg.MustRegister(SearchDuration)
	reg.MustRegister(FavoritesWrites)
	reg.MustRegister(Logins)
}
