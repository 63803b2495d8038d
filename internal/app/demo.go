package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// demoOrder — заказ демонстрационного сценария.
type demoOrder struct {
	customer domain.Customer
	lines    []demoLine
	card     domain.Card
}

type demoLine struct {
	code string
	qty  int
}

// OrderOutcome — итог одного заказа сценария.
type OrderOutcome struct {
	OrderID string
	Status  domain.OrderStatus
	Err     error
}

func demoOrders() []demoOrder {
	return []demoOrder{
		{
			customer: domain.Customer{Name: "John Doe", Email: "john.doe@example.com", Address: "123 Main St, Anytown, USA"},
			lines:    []demoLine{{code: "ITEM001", qty: 2}, {code: "ITEM003", qty: 1}},
			card:     domain.Card{Number: "1234567890123456", ExpiryDate: "12/25", CVV: "123"},
		},
		{
			customer: domain.Customer{Name: "Jane Smith", Email: "jane.smith@example.com", Address: "456 Oak Ave, Otherville, USA"},
			lines:    []demoLine{{code: "ITEM002", qty: 1}},
			card:     domain.Card{Number: domain.DeclineCardNumber, ExpiryDate: "01/24", CVV: "456"},
		},
	}
}

// RunDemo проводит два заказа: первый оплачивается, второй отклоняется шлюзом.
// Отказы заказов считаются ожидаемым исходом и попадают в OrderOutcome. Ошибкой считается только отмена ctx или сбой склада.
func RunDemo(ctx context.Context, deps *Dependencies, out io.Writer) ([]OrderOutcome, error) {
	fmt.Fprintln(out, "--- INITIALIZING INVENTORY ---")
	if err := printInventory(ctx, deps.Inventory, out); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "------------------------------")

	var outcomes []OrderOutcome
	for i, order := range demoOrders() {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		n := i + 1
		fmt.Fprintf(out, "\n%s\n", order.customer)

		p := deps.NewProcessor(order.customer)
		for _, line := range order.lines {
			if err := p.AddItem(ctx, line.code, line.qty); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%d of %s added to order %s.\n", line.qty, lastLineName(p.Order()), p.ID())
		}

		err := p.CompleteOrder(ctx, order.card)
		outcomes = append(outcomes, OrderOutcome{OrderID: p.ID(), Status: p.Status(), Err: err})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcomes, ctxErr
		}
		if err != nil {
			fmt.Fprintf(out, "Order %d processing failed: %v\n", n, err)
		} else {
			summary, sumErr := p.Summary()
			if sumErr != nil {
				return outcomes, sumErr
			}
			fmt.Fprintf(out, "\n--- ORDER SUMMARY (%s) ---\n%s---------------------------\n", p.ID(), summary)
			fmt.Fprintf(out, "Order %d processing complete.\n", n)
		}

		fmt.Fprintln(out, "\nUpdated Inventory:")
		if err := printInventory(ctx, deps.Inventory, out); err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// lastLineName возвращает название последней добавленной позиции.
func lastLineName(order domain.Order) string {
	lines := order.Cart.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1].Name
}

func printInventory(ctx context.Context, inventory domain.Inventory, out io.Writer) error {
	items, err := inventory.Items(ctx)
	if err != nil {
		return fmt.Errorf("list inventory: %w", err)
	}
	for _, item := range items {
		fmt.Fprintf(out, "  %s: %s\n", item.Code, item)
	}
	return nil
}
