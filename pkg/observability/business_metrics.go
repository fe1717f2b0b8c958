package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fonepay redirect requests built
	fonepayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fonepay_requests_total",
		Help: "Total Fonepay payment requests built",
	}, []string{
		"merchant_code",
		"status", // success, invalid_request, configuration, system_error
	})

	// Fonepay callback verifications
	fonepayVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fonepay_verifications_total",
		Help: "Total Fonepay callback verifications by outcome",
	}, []string{
		"merchant_code",
		"outcome", // verified, not_successful, signature_mismatch, malformed_signature, ...
	})
)

// RecordFonepayRequest records a payment request build attempt
func RecordFonepayRequest(merchantCode, status string) {
	fonepayRequestsTotal.WithLabelValues(merchantCode, status).Inc()
}

// RecordFonepayVerification records a callback verification outcome
func RecordFonepayVerification(merchantCode, outcome string) {
	fonepayVerificationsTotal.WithLabelValues(merchantCode, outcome).Inc()
}
