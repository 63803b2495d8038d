package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// RetryConfig конфигурация для retry логики.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingGateway повторяет Charge при временных сбоях шлюза.
// Отказ по карте и отмена контекста не повторяются.
type RetryingGateway struct {
	next   domain.PaymentGateway
	config RetryConfig
	logger *log.Entry
}

// NewRetryingGateway оборачивает шлюз retry логикой.
func NewRetryingGateway(next domain.PaymentGateway, config RetryConfig, logger *log.Entry) *RetryingGateway {
	if logger == nil {
		logger = log.New().WithField("component", "payment-retry")
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &RetryingGateway{next: next, config: config, logger: logger}
}

// Charge вызывает шлюз не более MaxAttempts раз с экспоненциальной задержкой.
func (g *RetryingGateway) Charge(ctx context.Context, orderID string, amount decimal.Decimal, card domain.Card) error {
	var lastErr error
	delay := g.config.InitialDelay

	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		err := g.next.Charge(ctx, orderID, amount, card)
		if err == nil {
			if attempt > 1 {
				g.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt,
				}).Info("charge succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}
		if attempt == g.config.MaxAttempts {
			break
		}

		g.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt,
			"delay":    delay,
		}).Warn("charge failed, retrying")

		if err := sleepContext(ctx, delay); err != nil {
			return fmt.Errorf("charge order %s: %w", orderID, err)
		}
		delay = time.Duration(float64(delay) * g.config.BackoffFactor)
		if g.config.MaxDelay > 0 && delay > g.config.MaxDelay {
			delay = g.config.MaxDelay
		}
	}

	g.logger.WithError(lastErr).WithFields(log.Fields{
		"order_id":     orderID,
		"max_attempts": g.config.MaxAttempts,
	}).Error("charge failed after all retry attempts")
	return lastErr
}

// shouldRetry отделяет временные сбои от бизнес-отказов.
func shouldRetry(err error) bool {
	switch {
	case errors.Is(err, domain.ErrPaymentDeclined):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.PaymentGateway = (*RetryingGateway)(nil)
