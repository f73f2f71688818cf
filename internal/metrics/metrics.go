package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prepwise",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prepwise",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "interview_status_transitions_total",
		Help:      "Interview status changes written to the store",
	}, []string{"from", "to"})

	entryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "interview_entry_outcomes_total",
		Help:      "Lifecycle decisions made when a user enters a scheduled interview",
	}, []string{"outcome"})

	sweptInterviews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "sweep_expired_interviews_total",
		Help:      "Scheduled interviews marked incomplete by the expiry sweep",
	})

	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "sweep_failures_total",
		Help:      "Expiry sweeps that failed and were skipped",
	})

	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "llm_generations_total",
		Help:      "Model generations by kind and result",
	}, []string{"kind", "result"})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request metrics labelled by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func RecordEntryOutcome(outcome string) {
	entryOutcomes.WithLabelValues(outcome).Inc()
}

func RecordSweep(expired int, err error) {
	if err != nil {
		sweepFailures.Inc()
		return
	}
	sweptInterviews.Add(float64(expired))
}

func RecordGeneration(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	generations.WithLabelValues(kind, result).Inc()
}
