package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/service/payment"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Inventory domain.Inventory
	Gateway   domain.PaymentGateway
	Notifier  domain.Notifier
	Timeline  domain.TimelineRepository
	Metrics   *metrics.CheckoutMetrics
	Registry  *prometheus.Registry
	Health    *health.Handler
	Logger    *log.Entry

	producer       *kafka.Producer
	closeInventory func() error
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
// Каждый вызов получает собственный prometheus.Registry.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	inv, err := initInventory(ctx, cfg, DefaultCatalog(), logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthHandler := health.NewHandler(version.Version())
	for name, checker := range inv.checkers {
		healthHandler.RegisterChecker(name, checker)
	}

	notifier, producer := initNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	paymentLogger := logger.WithField("component", "payment")
	retry := payment.DefaultRetryConfig()
	retry.MaxAttempts = cfg.PaymentMaxAttempts
	gateway := payment.NewRetryingGateway(payment.NewSimulator(cfg.PaymentLatency, paymentLogger), retry, paymentLogger)

	return &Dependencies{
		Inventory:      inv.inventory,
		Gateway:        gateway,
		Notifier:       notifier,
		Timeline:       memory.NewTimelineRepository(),
		Metrics:        metrics.NewCheckoutMetrics(registry),
		Registry:       registry,
		Health:         healthHandler,
		Logger:         logger,
		producer:       producer,
		closeInventory: inv.close,
	}, nil
}

// NewProcessor создаёт процессор заказа поверх общих зависимостей.
func (d *Dependencies) NewProcessor(customer domain.Customer, opts ...checkout.Option) *checkout.Processor {
	base := []checkout.Option{
		checkout.WithLogger(d.Logger.WithField("component", "checkout")),
		checkout.WithMetrics(d.Metrics),
		checkout.WithNotifier(d.Notifier),
		checkout.WithTimeline(d.Timeline),
	}
	return checkout.New(d.Inventory, customer, d.Gateway, append(base, opts...)...)
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close() {
	closeKafka(d.producer, d.Logger)
	if d.closeInventory != nil {
		if err := d.closeInventory(); err != nil {
			d.Logger.WithError(err).Warn("failed to close inventory backend")
		}
	}
}
