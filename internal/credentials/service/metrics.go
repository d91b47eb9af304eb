package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the counters below.
const (
	ResultSuccess   = "success"
	ResultRejected  = "rejected"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
)

// Registrations counts register attempts by result.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_credentials_registrations_total",
		Help: "Total number of registration attempts",
	},
	[]string{"result"},
)

// Logins counts login attempts by result.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_credentials_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"result"},
)

// Confirmations counts confirmation redemptions by result.
var Confirmations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_credentials_confirmations_total",
		Help: "Total number of confirmation token redemptions",
	},
	[]string{"result"},
)

// EmailDeliveries counts confirmation emails by result.
var EmailDeliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_credentials_email_deliveries_total",
		Help: "Total number of confirmation email deliveries",
	},
	[]string{"result"},
)

// HashDuration observes bcrypt work, queueing on the hasher included.
var HashDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "trivia_credentials_password_hash_duration_seconds",
		Help:    "Password hash and compare duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

// RegisterMetrics registers the service metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations)
	reg.MustRegister(Logins)
	reg.MustRegister(Confirmations)
	reg.MustRegister(EmailDeliveries)
	reg.MustRegister(HashDuration)
}

func observeHash(op string, start time.Time) {
	HashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
