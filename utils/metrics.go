package utils

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	BookingsCreated   prometheus.Counter
	BookingsRejected  prometheus.Counter
	EmailFailures     prometheus.Counter
	HTTPRequestsTotal *prometheus.CounterVec
	Registry          *prometheus.Registry
}

// NewMetrics creates the Prometheus collectors on a private registry so
// tests can build isolated instances.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings accepted and persisted",
		}),
		BookingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Booking submissions rejected by validation or overlap checks",
		}),
		EmailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_email_failures_total",
			Help: "Guest emails that could not be sent",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		Registry: reg,
	}

	reg.MustRegister(
		m.BookingsCreated,
		m.BookingsRejected,
		m.EmailFailures,
		m.HTTPRequestsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// AppMetrics is the instance wired into the routes. Set once at startup.
var AppMetrics = NewMetrics(prometheus.NewRegistry())
