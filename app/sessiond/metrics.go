package sessiond

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/session"
)

// metrics implements session.Observer and instruments HTTP handlers.
type metrics struct {
	registry    *prometheus.Registry
	logins      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

var _ session.Observer = (*metrics)(nil)

func newMetrics(namespace string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Completed logins by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session status transitions.",
		}, []string{"from", "to"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.transitions,
		m.requests,
	)
	return m
}

func (m *metrics) LoginCompleted(reactivated bool) {
	outcome := "created"
	if reactivated {
		outcome = "reactivated"
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *metrics) Transitioned(from, to session.Status) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware observes latency labelled by the matched route pattern.
func (m *metrics) middleware(next handler.HandlerFunc[*Context]) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		start := time.Now()
		resp := next(ctx)
		if resp == nil {
			return nil
		}
		return func(w http.ResponseWriter, r *http.Request) error {
			sw := &statusWriter{ResponseWriter: w}
			err := resp(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
				if err != nil {
					status = response.AsHTTPError(err).Status
				}
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
