package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pharmapool"

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	gatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_calls_total",
		Help:      "Payment gateway calls by provider, operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	pledgeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pledge_verifications_total",
		Help:      "Pledge verification outcomes.",
	}, []string{"outcome"})

	walletsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallets_completed_total",
		Help:      "Wallets that reached their funding goal and partner quorum.",
	})

	lockRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_lock_retries_total",
		Help:      "Wallet updates retried after a version conflict.",
	})
)

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveGatewayCall records a gateway round trip. outcome is "ok" or an
// error class.
func ObserveGatewayCall(provider, operation, outcome string) {
	gatewayCalls.WithLabelValues(provider, operation, outcome).Inc()
}

// ObservePledgeOutcome records verified, declined or retryable
func ObservePledgeOutcome(outcome string) {
	pledgeOutcomes.WithLabelValues(outcome).Inc()
}

func IncWalletsCompleted() {
	walletsCompleted.Inc()
}

func IncLockRetries() {
	lockRetries.Inc()
}
