package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState — попытка изменить заказ в статусе, который этого не допускает.
	ErrInvalidState = errors.New("order state does not allow this operation")
	// ErrItemNotFound — товар с указанным кодом отсутствует на складе.
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientStock — доступного остатка меньше, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrQuantityInvalid — количество в позиции должно быть больше нуля.
	ErrQuantityInvalid = errors.New("item quantity must be greater than zero")
	// ErrValidation — данные клиента не прошли проверку.
	ErrValidation = errors.New("customer validation failed")
	// ErrEmptyCart — нельзя оплатить пустую корзину.
	ErrEmptyCart = errors.New("cannot process payment for an empty order")
	// ErrPaymentDeclined — платёж отклонён шлюзом (бизнес-ошибка).
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrInventoryInconsistency — позиция заказа ссылается на товар, которого нет на складе.
	// При нормальной работе недостижима.
	ErrInventoryInconsistency = errors.New("inventory inconsistency")
	// ErrSummaryUnavailable — сводка формируется только для оплаченного заказа.
	ErrSummaryUnavailable = errors.New("order summary is available only for paid orders")
)

// ValidationError описывает первое нарушенное правило проверки клиента.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap позволяет сравнивать ошибку с ErrValidation через errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InsufficientStockError содержит детали нехватки остатка.
type InsufficientStockError struct {
	Code      string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d", e.Name, e.Available, e.Requested)
}

// Unwrap позволяет сравнивать ошибку с ErrInsufficientStock через errors.Is.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsRetryable сообщает, можно ли повторить оформление после ошибки
// (исправив причину на стороне вызывающего).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrEmptyCart)
}
