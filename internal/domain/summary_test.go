package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestSummaryRequiresPaidOrder(t *testing.T) {
	order := newOrder()
	if _, err := domain.NewSummary(order); !errors.Is(err, domain.ErrSummaryUnavailable) {
		t.Fatalf("expected ErrSummaryUnavailable, got %v", err)
	}
}

func TestSummaryCloneDetachesLines(t *testing.T) {
	order := newOrder()
	if err := order.AddItem(widget(), 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := order.MarkPaid(time.Now().UTC()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	summary, err := domain.NewSummary(order)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	clone := summary.Clone()
	clone.Lines[0].Quantity = 99
	if summary.Lines[0].Quantity != 2 {
		t.Fatalf("clone shares lines with original: quantity %d", summary.Lines[0].Quantity)
	}
}

func TestSummaryString(t *testing.T) {
	order := newOrder()
	if err := order.AddItem(widget(), 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := order.AddItem(thingamajig(), 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := order.MarkPaid(time.Now().UTC()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	summary, err := domain.NewSummary(order)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	want := "Order Summary for Order ID: ORD-1\n" +
		"Customer: John Doe (john.doe@example.com)\n" +
		"Address: 123 Main St\n" +
		"Status: paid\n" +
		"Items:\n" +
		"  - Super Widget (Code: ITEM001) x 2 @ $19.99 each\n" +
		"  - Basic Thingamajig (Code: ITEM003) x 1 @ $9.99 each\n" +
		"Subtotal: $49.97\n" +
		"Tax (7%): $3.50\n" +
		"Total: $53.47\n" +
		"Thank you for your order!\n"
	if got := summary.String(); got != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}

	// Сводка не меняется вместе с заказом.
	order.Cart.Add(widget(), 1)
	if len(summary.Lines) != 2 {
		t.Fatalf("summary lines mutated: %d", len(summary.Lines))
	}
}

func TestCardMasksNumber(t *testing.T) {
	card := domain.Card{Number: "1234567890123456", ExpiryDate: "12/25", CVV: "123"}
	if card.String() != "3456" {
		t.Fatalf("unexpected card string %q", card.String())
	}
	short := domain.Card{Number: "12"}
	if short.LastFour() != "12" {
		t.Fatalf("unexpected last four %q", short.LastFour())
	}
}
