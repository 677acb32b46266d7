package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "versegallery", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "versegallery", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HandshakeCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "versegallery", Name: "layer8_handshake_completed_total", Help: "Number of Layer8 handshakes that reached the complete state."},
	)
	HandshakeFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "versegallery", Name: "layer8_handshake_failed_total", Help: "Number of failed Layer8 handshakes by stage."},
		[]string{"stage"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HandshakeCompleted)
	reg.MustRegister(HandshakeFailed)
}
