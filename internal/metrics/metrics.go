// Package metrics holds the Prometheus instruments for hotelops.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelops"

var (
	requestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Maintenance requests created, by category and priority.",
	}, []string{"category", "priority"})

	statusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_status_changes_total",
		Help:      "Status transitions applied to maintenance requests.",
	}, []string{"from", "to"})

	assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_assigned_total",
		Help:      "Technician assignment changes, by action (assign or unassign).",
	}, []string{"action"})

	requestsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_deleted_total",
		Help:      "Maintenance requests permanently deleted.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})
)

// RequestCreated counts a new maintenance request.
func RequestCreated(category, priority string) {
	requestsCreated.WithLabelValues(category, priority).Inc()
}

// StatusChanged counts a status transition. Same-status updates are not counted.
func StatusChanged(from, to string) {
	if from == to {
		return
	}
	statusChanges.WithLabelValues(from, to).Inc()
}

// AssignmentChanged counts an assign (technician != "") or unassign.
func AssignmentChanged(technician string) {
	action := "assign"
	if technician == "" {
		action = "unassign"
	}
	assignments.WithLabelValues(action).Inc()
}

// RequestDeleted counts a hard delete.
func RequestDeleted() {
	requestsDeleted.Inc()
}

// ObserveHTTP records one served HTTP request.
func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
