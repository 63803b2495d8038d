package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/checkout/internal/health"
)

// Run поднимает зависимости, при необходимости HTTP-сервер метрик и проигрывает демо-сценарий.
// Без KeepServing приложение завершается после сценария.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, deps.Registry, deps.Health)
		g.Go(func() error {
			logger.Infof("метрики доступны по адресу %s/metrics", cfg.MetricsAddr)
			logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", cfg.MetricsAddr, cfg.MetricsAddr, cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownHTTP(srv, logger)
			return nil
		})
	}

	g.Go(func() error {
		outcomes, err := RunDemo(gctx, deps, out)
		if err != nil {
			return err
		}
		for _, outcome := range outcomes {
			logger.WithFields(log.Fields{
				"order_id": outcome.OrderID,
				"status":   outcome.Status,
			}).Info("demo order finished")
		}
		if !cfg.KeepServing {
			cancel()
		}
		return nil
	})

	return g.Wait()
}

// newMetricsServer собирает HTTP-обработчики /metrics и health checks.
func newMetricsServer(addr string, registry *prometheus.Registry, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
