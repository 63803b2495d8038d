package domain

import (
	"fmt"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, корзину можно менять.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaymentFailed — платёж отклонён; можно дополнить корзину и повторить оплату.
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	// OrderStatusValidationFailed — данные клиента не прошли проверку; корзина заблокирована.
	OrderStatusValidationFailed OrderStatus = "validation_failed"
	// OrderStatusPaid — оплата прошла, склад списан. Конечный статус.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusCanceled — заказ отменён, резервы сняты. Конечный статус.
	OrderStatusCanceled OrderStatus = "canceled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaymentFailed, OrderStatusValidationFailed,
		OrderStatusPaid, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusCanceled:
		return true
	case OrderStatusPending, OrderStatusPaymentFailed, OrderStatusValidationFailed:
		return false
	default:
		return false
	}
}

// Order агрегирует клиента, корзину и статус заказа.
// Статус и корзину меняет только процессор заказа.
type Order struct {
	ID        string
	Customer  Customer
	Cart      Cart
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder создаёт заказ в статусе pending.
func NewOrder(id string, customer Customer, now time.Time) *Order {
	return &Order{
		ID:        id,
		Customer:  customer,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanModify разрешает изменение корзины только в pending и payment_failed.
// После validation_failed корзина заблокирована.
func (o *Order) CanModify() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusPaymentFailed:
		return true
	case OrderStatusValidationFailed, OrderStatusPaid, OrderStatusCanceled:
		return false
	default:
		return false
	}
}

// CanComplete разрешает очередную попытку оформления из любого нетерминального статуса.
func (o *Order) CanComplete() bool {
	return o.Status.Valid() && !o.Status.Terminal()
}

// AddItem добавляет позицию в корзину. Остаток проверяет склад при резервировании.
func (o *Order) AddItem(item Item, qty int) error {
	if !o.CanModify() {
		return fmt.Errorf("cannot add items to order %s in status %s: %w", o.ID, o.Status, ErrInvalidState)
	}
	if qty <= 0 {
		return ErrQuantityInvalid
	}
	o.Cart.Add(item, qty)
	return nil
}

// MarkPaid переводит заказ в paid.
func (o *Order) MarkPaid(now time.Time) error {
	return o.transition(OrderStatusPaid, now)
}

// MarkValidationFailed переводит заказ в validation_failed.
func (o *Order) MarkValidationFailed(now time.Time) error {
	return o.transition(OrderStatusValidationFailed, now)
}

// MarkPaymentFailed переводит заказ в payment_failed.
func (o *Order) MarkPaymentFailed(now time.Time) error {
	return o.transition(OrderStatusPaymentFailed, now)
}

// MarkCanceled переводит заказ в canceled.
func (o *Order) MarkCanceled(now time.Time) error {
	return o.transition(OrderStatusCanceled, now)
}

func (o *Order) transition(to OrderStatus, now time.Time) error {
	if o.Status.Terminal() {
		return fmt.Errorf("order %s is %s: %w", o.ID, o.Status, ErrInvalidState)
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// Snapshot возвращает копию заказа, не разделяющую корзину с оригиналом.
func (o *Order) Snapshot() Order {
	cp := *o
	cp.Cart = Cart{lines: o.Cart.Lines()}
	return cp
}
