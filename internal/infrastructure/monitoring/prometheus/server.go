package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

// Serve exposes the metric set on addr at /metrics in a background goroutine.
// Listen failures are logged, not fatal; metrics are an auxiliary surface.
// The returned function drains in-flight scrapes and stops the listener.
func Serve(addr string, m *Metrics, log logging.Logger) func(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics listener started", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics listener stopped", logging.Err(err))
		}
	}()

	return func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}
}
