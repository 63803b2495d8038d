package payment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// MockGateway — конфигурируемая заглушка PaymentGateway для тестов.
type MockGateway struct {
	mu sync.Mutex

	ChargeErr error

	ChargeCalls int
	LastOrderID string
	LastAmount  decimal.Decimal
	LastCard    domain.Card
}

// NewMockGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge запоминает аргументы, считает вызовы и возвращает настроенную ошибку.
func (m *MockGateway) Charge(_ context.Context, orderID string, amount decimal.Decimal, card domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChargeCalls++
	m.LastOrderID = orderID
	m.LastAmount = amount
	m.LastCard = card
	return m.ChargeErr
}

// Calls возвращает число вызовов Charge.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChargeCalls
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
