// Package metrics exposes Prometheus counters for runs, provider calls
// and notification deliveries, plus the /metrics server used in serve mode.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "building_monitor_runs_total",
			Help: "Total number of reconciliation runs.",
		},
		[]string{"status"},
	)
	ProviderRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "building_monitor_provider_requests_total",
			Help: "Total number of upstream provider requests.",
		},
		[]string{"provider", "status"},
	)
	NotificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "building_monitor_notifications_total",
			Help: "Total number of webhook notifications sent.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(RunCounter, ProviderRequestCounter, NotificationCounter)
}

// Serve starts the metrics HTTP server on addr. Blocks until the server
// fails; callers run it in a goroutine.
func Serve(addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics server listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
