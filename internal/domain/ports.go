package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Inventory описывает склад. Все изменения остатков сериализуются реализацией.
type Inventory interface {
	// FindItem возвращает карточку товара или ErrItemNotFound.
	FindItem(ctx context.Context, code string) (Item, error)
	// Reserve атомарно удерживает qty единиц под заказ.
	// Возвращает *InsufficientStockError, если доступного остатка не хватает.
	Reserve(ctx context.Context, orderID, code string, qty int) error
	// Release снимает резерв по позициям заказа (компенсация при отмене).
	Release(ctx context.Context, orderID string, lines []CartLine) error
	// Commit списывает остаток по позициям оплаченного заказа, превращая резерв в продажу.
	// Возвращает ErrInventoryInconsistency, если товар позиции исчез со склада.
	Commit(ctx context.Context, orderID string, lines []CartLine) error
	// Items возвращает снимок склада, отсортированный по коду.
	Items(ctx context.Context) ([]Item, error)
}

// PaymentGateway описывает взаимодействие с платёжным шлюзом.
type PaymentGateway interface {
	// Charge списывает amount с карты. При отказе возвращает ErrPaymentDeclined.
	Charge(ctx context.Context, orderID string, amount decimal.Decimal, card Card) error
}

// Notifier отправляет клиенту подтверждение заказа. Работает по принципу best-effort.
type Notifier interface {
	SendConfirmation(ctx context.Context, email, orderID string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// CheckoutStep задаёт константы шагов оформления для метрик/логов.
type CheckoutStep string

const (
	CheckoutStepValidate CheckoutStep = "validate"
	CheckoutStepCart     CheckoutStep = "cart"
	CheckoutStepCharge   CheckoutStep = "charge"
	CheckoutStepCommit   CheckoutStep = "commit"
	CheckoutStepSummary  CheckoutStep = "summary"
	CheckoutStepNotify   CheckoutStep = "notify"
)
