package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks HTTP traffic and the registry's business events.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ApplicationsTotal    *prometheus.CounterVec
	TransitionsTotal     *prometheus.CounterVec
	IDNumbersAllocated   prometheus.Counter
	PaymentsTotal        *prometheus.CounterVec
	PaymentCallbackTotal *prometheus.CounterVec
}

// New registers every metric on a fresh registry, along with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nationalid_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nationalid_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		ApplicationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nationalid_applications_submitted_total",
			Help: "Applications submitted by application type",
		}, []string{"type"}),
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nationalid_application_transitions_total",
			Help: "Workflow transitions attempted by action and outcome",
		}, []string{"action", "outcome"}),
		IDNumbersAllocated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nationalid_id_numbers_allocated_total",
			Help: "National ID numbers allocated on approval",
		}),
		PaymentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nationalid_payments_total",
			Help: "Payments initiated by method and outcome",
		}, []string{"method", "outcome"}),
		PaymentCallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nationalid_payment_callbacks_total",
			Help: "Gateway callbacks received by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served request. route is the mux pattern, so
// path parameters do not explode label cardinality.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if route == "" {
		route = "unmatched"
	}

	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncApplication(applicationType string) {
	m.ApplicationsTotal.WithLabelValues(applicationType).Inc()
}

func (m *Metrics) IncTransition(action string, ok bool) {
	m.TransitionsTotal.WithLabelValues(action, outcome(ok)).Inc()
}

func (m *Metrics) IncIDAllocated() {
	m.IDNumbersAllocated.Inc()
}

func (m *Metrics) IncPayment(method string, ok bool) {
	m.PaymentsTotal.WithLabelValues(method, outcome(ok)).Inc()
}

func (m *Metrics) IncCallback(result string) {
	m.PaymentCallbackTotal.WithLabelValues(result).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
