package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// DefaultLatency имитирует сетевую задержку платёжного шлюза.
const DefaultLatency = time.Second

// Simulator — детерминированная заглушка платёжного шлюза.
// Отклоняет только карту с номером domain.DeclineCardNumber.
type Simulator struct {
	latency time.Duration
	logger  *log.Entry
}

// NewSimulator создаёт симулятор с заданной задержкой (0 отключает задержку).
func NewSimulator(latency time.Duration, logger *log.Entry) *Simulator {
	if logger == nil {
		logger = log.New().WithField("component", "payment-simulator")
	}
	if latency < 0 {
		latency = 0
	}
	return &Simulator{latency: latency, logger: logger}
}

// Charge ждёт задержку (с учётом отмены контекста) и принимает решение по номеру карты.
func (s *Simulator) Charge(ctx context.Context, orderID string, amount decimal.Decimal, card domain.Card) error {
	logger := s.logger.WithFields(log.Fields{
		"order_id":  orderID,
		"card_last": card.LastFour(),
		"amount":    amount.StringFixed(2),
	})
	logger.Info("processing payment")

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("charge order %s: %w", orderID, ctx.Err())
		case <-timer.C:
		}
	}

	if card.Number == domain.DeclineCardNumber {
		logger.Warn("payment declined")
		return fmt.Errorf("charge order %s: %w", orderID, domain.ErrPaymentDeclined)
	}

	logger.Info("payment succeeded")
	return nil
}

var _ domain.PaymentGateway = (*Simulator)(nil)
