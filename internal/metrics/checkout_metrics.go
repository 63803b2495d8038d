package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказов для label reason.
const (
	ReasonValidation   = "validation"
	ReasonEmptyCart    = "empty_cart"
	ReasonPayment      = "payment"
	ReasonInventory    = "inventory"
	ReasonInvalidState = "invalid_state"
	ReasonNotFound     = "not_found"
	ReasonStock        = "insufficient_stock"
	ReasonQuantity     = "invalid_quantity"
	ReasonOther        = "other"
)

// CheckoutMetrics содержит метрики оформления заказов.
type CheckoutMetrics struct {
	// Счётчики заказов
	ordersCreated   prometheus.Counter
	ordersCompleted prometheus.Counter
	ordersCanceled  prometheus.Counter
	ordersFailed    *prometheus.CounterVec

	// Счётчики корзины
	itemsAdded    prometheus.Counter
	itemsRejected *prometheus.CounterVec

	notificationsFailed prometheus.Counter

	// Гистограммы времени выполнения
	checkoutDuration prometheus.Histogram
	stepDuration     *prometheus.HistogramVec

	// Gauge для оформлений в процессе
	activeCheckouts prometheus.Gauge
}

// NewCheckoutMetrics создаёт метрики и регистрирует их в registerer
// (при nil используется prometheus.DefaultRegisterer). Повторная регистрация возвращает уже существующие коллекторы.
func NewCheckoutMetrics(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_completed_total",
			Help: "Total number of orders paid and committed",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_canceled_total",
			Help: "Total number of orders canceled with reservations released",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_failed_total",
			Help: "Total number of failed checkout attempts grouped by reason",
		}, []string{"reason"}),
		itemsAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_items_added_total",
			Help: "Total number of cart lines added",
		}),
		itemsRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_items_rejected_total",
			Help: "Total number of rejected add-item requests grouped by reason",
		}, []string{"reason"}),
		notificationsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_notifications_failed_total",
			Help: "Total number of confirmation notifications that failed",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "checkout_step_duration_seconds",
			Help:    "Duration of individual checkout steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		activeCheckouts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "checkout_active_checkouts",
			Help: "Number of checkout attempts currently in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *CheckoutMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordItemAdded увеличивает счётчик добавленных позиций.
func (m *CheckoutMetrics) RecordItemAdded() {
	m.itemsAdded.Inc()
}

// RecordItemRejected учитывает отказ в добавлении позиции.
func (m *CheckoutMetrics) RecordItemRejected(reason string) {
	m.itemsRejected.WithLabelValues(reason).Inc()
}

// RecordCheckoutStarted увеличивает количество оформлений в процессе.
func (m *CheckoutMetrics) RecordCheckoutStarted() {
	m.activeCheckouts.Inc()
}

// RecordCheckoutFinished уменьшает количество оформлений в процессе и записывает длительность.
func (m *CheckoutMetrics) RecordCheckoutFinished(duration time.Duration) {
	m.activeCheckouts.Dec()
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordOrderCompleted увеличивает счётчик оплаченных заказов.
func (m *CheckoutMetrics) RecordOrderCompleted() {
	m.ordersCompleted.Inc()
}

// RecordOrderFailed учитывает неудачную попытку оформления.
func (m *CheckoutMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordOrderCanceled увеличивает счётчик отменённых заказов.
func (m *CheckoutMetrics) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

// RecordNotificationFailed увеличивает счётчик неотправленных подтверждений.
func (m *CheckoutMetrics) RecordNotificationFailed() {
	m.notificationsFailed.Inc()
}

// RecordStepDuration записывает время выполнения шага оформления.
func (m *CheckoutMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}
