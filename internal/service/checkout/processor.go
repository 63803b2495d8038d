package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/notification"
	"github.com/vladislavdragonenkov/checkout/internal/service/validation"
)

// CustomerValidator проверяет данные клиента перед оплатой.
type CustomerValidator interface {
	Validate(customer domain.Customer) error
}

// IDGenerator выдаёт идентификатор нового заказа.
type IDGenerator func() string

// NewOrderID генерирует идентификатор вида ORD-<unix>-<100..999>.
// Уникальность гарантируется только в пределах одного запуска.
func NewOrderID() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().Unix(), 100+rand.Intn(900))
}

// Options задаёт зависимости процессора.
type Options struct {
	Logger      *log.Entry
	Metrics     *metrics.CheckoutMetrics
	Notifier    domain.Notifier
	Timeline    domain.TimelineRepository
	Validator   CustomerValidator
	IDGenerator IDGenerator
	Clock       func() time.Time
}

// Option настраивает Processor.
type Option func(*Options)

// WithLogger задаёт logger процессора.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics включает prometheus-метрики.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithNotifier задаёт канал отправки подтверждений.
func WithNotifier(notifier domain.Notifier) Option {
	return func(opts *Options) {
		opts.Notifier = notifier
	}
}

// WithTimeline включает запись событий заказа.
func WithTimeline(timeline domain.TimelineRepository) Option {
	return func(opts *Options) {
		opts.Timeline = timeline
	}
}

// WithValidator подменяет проверку клиента.
func WithValidator(validator CustomerValidator) Option {
	return func(opts *Options) {
		opts.Validator = validator
	}
}

// WithIDGenerator задаёт генератор идентификаторов (детерминированные id в тестах).
func WithIDGenerator(gen IDGenerator) Option {
	return func(opts *Options) {
		opts.IDGenerator = gen
	}
}

// WithClock задаёт источник времени для статусов и событий.
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

// Processor ведёт один заказ от наполнения корзины до оплаты:
// validate → charge → commit → summary → notify.
type Processor struct {
	mu      sync.Mutex
	order   *domain.Order
	summary *domain.Summary

	inventory domain.Inventory
	gateway   domain.PaymentGateway
	validator CustomerValidator
	notifier  domain.Notifier
	timeline  domain.TimelineRepository
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
	clock     func() time.Time
}

// New создаёт заказ в статусе pending для клиента.
func New(inventory domain.Inventory, customer domain.Customer, gateway domain.PaymentGateway, options ...Option) *Processor {
	opts := Options{
		IDGenerator: NewOrderID,
		Clock:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", "checkout")
	}
	if opts.Validator == nil {
		opts.Validator = validation.NewCustomerValidator()
	}
	if opts.Notifier == nil {
		opts.Notifier = notification.NewLogNotifier(opts.Logger)
	}

	order := domain.NewOrder(opts.IDGenerator(), customer, opts.Clock())
	p := &Processor{
		order:     order,
		inventory: inventory,
		gateway:   gateway,
		validator: opts.Validator,
		notifier:  opts.Notifier,
		timeline:  opts.Timeline,
		metrics:   opts.Metrics,
		logger:    opts.Logger.WithField("order_id", order.ID),
		clock:     opts.Clock,
	}

	p.logger.WithField("customer", customer.Name).Info("order created")
	p.record(domain.TimelineOrderCreated, customer.Name)
	if p.metrics != nil {
		p.metrics.RecordOrderCreated()
	}
	return p
}

// AddItem резервирует qty единиц товара и добавляет позицию в корзину.
// При любой ошибке корзина и статус не меняются.
func (p *Processor) AddItem(ctx context.Context, code string, qty int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := p.logger.WithFields(log.Fields{
		"item_code": code,
		"qty":       qty,
	})

	if !p.order.CanModify() {
		err := fmt.Errorf("cannot add items to order %s in status %s: %w", p.order.ID, p.order.Status, domain.ErrInvalidState)
		p.rejectItem(logger, err)
		return err
	}
	if qty <= 0 {
		p.rejectItem(logger, domain.ErrQuantityInvalid)
		return domain.ErrQuantityInvalid
	}

	item, err := p.inventory.FindItem(ctx, code)
	if err != nil {
		p.rejectItem(logger, err)
		return err
	}
	if err := p.inventory.Reserve(ctx, p.order.ID, code, qty); err != nil {
		p.rejectItem(logger, err)
		return err
	}
	if err := p.order.AddItem(item, qty); err != nil {
		p.releaseLines(ctx, []domain.CartLine{{Code: code, Quantity: qty}})
		p.rejectItem(logger, err)
		return err
	}

	logger.WithField("item", item.Name).Info("item added to order")
	p.record(domain.TimelineItemAdded, fmt.Sprintf("%d x %s", qty, code))
	if p.metrics != nil {
		p.metrics.RecordItemAdded()
	}
	return nil
}

// CompleteOrder проводит заказ через проверку, оплату и списание склада.
// nil означает, что заказ оплачен и склад списан; ошибка уведомления не возвращается.
func (p *Processor) CompleteOrder(ctx context.Context, card domain.Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.order.CanComplete() {
		return fmt.Errorf("cannot complete order %s in status %s: %w", p.order.ID, p.order.Status, domain.ErrInvalidState)
	}

	start := time.Now()
	if p.metrics != nil {
		p.metrics.RecordCheckoutStarted()
		defer func() {
			p.metrics.RecordCheckoutFinished(time.Since(start))
		}()
	}

	// 1. Клиент
	stepStart := time.Now()
	if err := p.validator.Validate(p.order.Customer); err != nil {
		p.observeStep(domain.CheckoutStepValidate, stepStart)
		p.logger.WithError(err).Warn("customer validation failed, payment aborted")
		p.setStatus(p.order.MarkValidationFailed, err.Error())
		p.fail(metrics.ReasonValidation)
		return fmt.Errorf("validate order %s: %w", p.order.ID, err)
	}
	p.observeStep(domain.CheckoutStepValidate, stepStart)

	// 2. Корзина. Статус не меняется.
	stepStart = time.Now()
	empty := p.order.Cart.Empty()
	p.observeStep(domain.CheckoutStepCart, stepStart)
	if empty {
		p.logger.Warn("cannot process payment for an empty order")
		p.fail(metrics.ReasonEmptyCart)
		return fmt.Errorf("order %s: %w", p.order.ID, domain.ErrEmptyCart)
	}

	// 3. Оплата
	totals := p.order.Cart.Totals()
	stepStart = time.Now()
	p.logger.WithFields(log.Fields{
		"card":   card.String(),
		"amount": totals.Total.StringFixed(2),
	}).Debug("charging card")
	err := p.gateway.Charge(ctx, p.order.ID, totals.Total, card)
	p.observeStep(domain.CheckoutStepCharge, stepStart)
	if err != nil {
		p.logger.WithError(err).Warn("payment failed")
		p.setStatus(p.order.MarkPaymentFailed, err.Error())
		p.fail(metrics.ReasonPayment)
		return fmt.Errorf("payment for order %s: %w", p.order.ID, err)
	}
	p.logger.WithField("amount", totals.Total.StringFixed(2)).Info("payment captured")

	// 4. Фиксация
	if err := p.setStatus(p.order.MarkPaid, "payment captured"); err != nil {
		p.fail(metrics.ReasonInvalidState)
		return err
	}
	lines := p.order.Cart.Lines()
	stepStart = time.Now()
	if err := p.inventory.Commit(ctx, p.order.ID, lines); err != nil {
		p.observeStep(domain.CheckoutStepCommit, stepStart)
		// Резервы оплаченного заказа остаются на складе: Cancel для paid недоступен,
		// снимать их придётся вручную.
		held := formatLines(lines)
		p.logger.WithError(err).WithField("held_lines", held).Error("inventory commit failed for paid order")
		p.record(domain.TimelineReservationsStranded, held)
		p.fail(metrics.ReasonInventory)
		return fmt.Errorf("commit order %s: %w", p.order.ID, err)
	}
	p.observeStep(domain.CheckoutStepCommit, stepStart)
	p.logCommittedStock(ctx, lines)
	p.record(domain.TimelineInventoryCommitted, fmt.Sprintf("%d lines", len(lines)))

	// 5. Сводка
	stepStart = time.Now()
	summary, err := domain.NewSummary(p.order)
	p.observeStep(domain.CheckoutStepSummary, stepStart)
	if err != nil {
		p.logger.WithError(err).Error("order summary failed")
		p.fail(metrics.ReasonOther)
		return err
	}
	p.summary = &summary

	if p.metrics != nil {
		p.metrics.RecordOrderCompleted()
	}

	// 6. Уведомление (best-effort)
	p.notify(ctx)
	return nil
}

// Cancel снимает резервы и переводит заказ в canceled.
func (p *Processor) Cancel(ctx context.Context, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.order.Status.Terminal() {
		return fmt.Errorf("cannot cancel order %s in status %s: %w", p.order.ID, p.order.Status, domain.ErrInvalidState)
	}

	if lines := p.order.Cart.Lines(); len(lines) > 0 {
		if err := p.inventory.Release(ctx, p.order.ID, lines); err != nil {
			p.logger.WithError(err).Error("release reservations failed")
			return fmt.Errorf("cancel order %s: %w", p.order.ID, err)
		}
	}
	if err := p.setStatus(p.order.MarkCanceled, reason); err != nil {
		return err
	}

	p.logger.WithField("reason", reason).Info("order canceled")
	if p.metrics != nil {
		p.metrics.RecordOrderCanceled()
	}
	return nil
}

// ID возвращает идентификатор заказа.
func (p *Processor) ID() string {
	return p.order.ID
}

// Status возвращает текущий статус заказа.
func (p *Processor) Status() domain.OrderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Status
}

// Order возвращает копию заказа.
func (p *Processor) Order() domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Snapshot()
}

// Totals возвращает точные суммы корзины.
func (p *Processor) Totals() domain.Totals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Cart.Totals()
}

// Summary возвращает чек оплаченного заказа.
func (p *Processor) Summary() (domain.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.summary == nil {
		return domain.Summary{}, fmt.Errorf("order %s in status %s: %w", p.order.ID, p.order.Status, domain.ErrSummaryUnavailable)
	}
	return p.summary.Clone(), nil
}

// Timeline возвращает события заказа. Без репозитория список пуст.
func (p *Processor) Timeline() ([]domain.TimelineEvent, error) {
	if p.timeline == nil {
		return nil, nil
	}
	return p.timeline.List(p.order.ID)
}

func (p *Processor) setStatus(mark func(time.Time) error, reason string) error {
	from := p.order.Status
	if err := mark(p.clock()); err != nil {
		p.logger.WithError(err).Error("status transition rejected")
		return err
	}
	p.logger.WithFields(log.Fields{
		"from": from,
		"to":   p.order.Status,
	}).Info("order status changed")
	p.record(domain.TimelineStatusChanged, fmt.Sprintf("%s -> %s: %s", from, p.order.Status, reason))
	return nil
}

func (p *Processor) notify(ctx context.Context) {
	stepStart := time.Now()
	defer p.observeStep(domain.CheckoutStepNotify, stepStart)

	if err := p.notifier.SendConfirmation(ctx, p.order.Customer.Email, p.order.ID); err != nil {
		p.logger.WithError(err).Warn("confirmation not sent")
		if p.metrics != nil {
			p.metrics.RecordNotificationFailed()
		}
		return
	}
	p.record(domain.TimelineConfirmationSent, p.order.Customer.Email)
}

func (p *Processor) logCommittedStock(ctx context.Context, lines []domain.CartLine) {
	for code := range domain.QuantitiesByCode(lines) {
		item, err := p.inventory.FindItem(ctx, code)
		if err != nil {
			p.logger.WithError(err).WithField("item_code", code).Warn("cannot read stock after commit")
			continue
		}
		p.logger.WithFields(log.Fields{
			"item_code": code,
			"stock":     item.Stock,
		}).Info("stock reduced")
	}
}

func (p *Processor) releaseLines(ctx context.Context, lines []domain.CartLine) {
	if err := p.inventory.Release(ctx, p.order.ID, lines); err != nil {
		p.logger.WithError(err).Error("release reservation failed")
	}
}

func (p *Processor) rejectItem(logger *log.Entry, err error) {
	logger.WithError(err).Warn("item rejected")
	p.record(domain.TimelineItemRejected, err.Error())
	if p.metrics != nil {
		p.metrics.RecordItemRejected(rejectReason(err))
	}
}

func (p *Processor) fail(reason string) {
	if p.metrics != nil {
		p.metrics.RecordOrderFailed(reason)
	}
}

func (p *Processor) observeStep(step domain.CheckoutStep, started time.Time) {
	if p.metrics != nil {
		p.metrics.RecordStepDuration(string(step), time.Since(started))
	}
}

func (p *Processor) record(eventType, reason string) {
	if p.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  p.order.ID,
		Type:     eventType,
		Reason:   reason,
		Occurred: p.clock(),
	}
	if err := p.timeline.Append(event); err != nil {
		p.logger.WithError(err).WithField("event", eventType).Warn("failed to append timeline event")
	}
}

// formatLines перечисляет позиции как "CODE:qty" через запятую.
func formatLines(lines []domain.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s:%d", line.Code, line.Quantity))
	}
	return strings.Join(parts, ", ")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return metrics.ReasonInvalidState
	case errors.Is(err, domain.ErrQuantityInvalid):
		return metrics.ReasonQuantity
	case errors.Is(err, domain.ErrItemNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ReasonStock
	default:
		return metrics.ReasonOther
	}
}
