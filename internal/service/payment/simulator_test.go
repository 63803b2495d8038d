package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.ErrorLevel)
	return logger.WithField("component", "payment-test")
}

func TestSimulator_Charge(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr error
	}{
		{name: "regular card", number: "1234567890123456"},
		{name: "unvalidated number", number: "not-a-luhn-number"},
		{name: "sentinel card", number: domain.DeclineCardNumber, wantErr: domain.ErrPaymentDeclined},
	}

	sim := NewSimulator(0, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sim.Charge(context.Background(), "ORD-1", decimal.RequireFromString("53.4679"), domain.Card{Number: tt.number})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSimulator_Latency(t *testing.T) {
	sim := NewSimulator(20*time.Millisecond, quietLogger())

	start := time.Now()
	if err := sim.Charge(context.Background(), "ORD-1", decimal.NewFromInt(1), domain.Card{Number: "4111"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected latency of at least 20ms, got %s", elapsed)
	}
}

func TestSimulator_ContextCanceled(t *testing.T) {
	sim := NewSimulator(time.Hour, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Charge(ctx, "ORD-1", decimal.NewFromInt(1), domain.Card{Number: "4111"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewSimulator_Defaults(t *testing.T) {
	sim := NewSimulator(-time.Second, nil)
	if sim.latency != 0 {
		t.Fatalf("negative latency should be clamped, got %s", sim.latency)
	}
	if sim.logger == nil {
		t.Fatal("expected default logger")
	}
}
