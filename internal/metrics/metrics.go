package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urlstash_logins_total",
		Help: "Google login attempts by outcome.",
	}, []string{"status"})

	AuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "urlstash_auth_failures_total",
		Help: "Requests rejected by the token guard.",
	})

	BookmarksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "urlstash_bookmarks_created_total",
		Help: "Bookmarks successfully created.",
	})

	BookmarksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "urlstash_bookmarks_deleted_total",
		Help: "Bookmarks hard-deleted by their owner.",
	})

	OAuthExchangeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "urlstash_oauth_exchange_duration_seconds",
		Help:    "Time spent in provider code exchange and profile fetch.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)
