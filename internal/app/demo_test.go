package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestRunDemo(t *testing.T) {
	deps := newTestDependencies(t)
	var out bytes.Buffer

	outcomes, err := RunDemo(context.Background(), deps, &out)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, domain.OrderStatusPaid, outcomes[0].Status)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, domain.OrderStatusPaymentFailed, outcomes[1].Status)
	assert.ErrorIs(t, outcomes[1].Err, domain.ErrPaymentDeclined)

	text := out.String()
	assert.Contains(t, text, "--- INITIALIZING INVENTORY ---")
	assert.Contains(t, text, "  ITEM001: Item -> Super Widget (ID: ITEM001) has stock of 10 for $19.99 each")
	assert.Contains(t, text, "2 of Super Widget added to order "+outcomes[0].OrderID+".")
	assert.Contains(t, text, "1 of Basic Thingamajig added to order "+outcomes[0].OrderID+".")
	assert.Contains(t, text, "1 of Mega Gadget added to order "+outcomes[1].OrderID+".")
	assert.Contains(t, text, "Order Summary for Order ID: "+outcomes[0].OrderID)
	assert.Contains(t, text, "Total: $53.47")
	assert.Contains(t, text, "Order 1 processing complete.")
	assert.Contains(t, text, "Order 2 processing failed:")
	assert.Contains(t, text, "  ITEM001: Item -> Super Widget (ID: ITEM001) has stock of 8 for $19.99 each")
	assert.Contains(t, text, "  ITEM003: Item -> Basic Thingamajig (ID: ITEM003) has stock of 19 for $9.99 each")
	assert.Equal(t, 1, strings.Count(text, "--- ORDER SUMMARY"))

	// Отклонённый заказ продолжает удерживать резерв.
	item, err := deps.Inventory.FindItem(context.Background(), "ITEM002")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)
	assert.Equal(t, 1, item.Reserved)
}

func TestRunDemo_CanceledContext(t *testing.T) {
	deps := newTestDependencies(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := RunDemo(ctx, deps, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
}
