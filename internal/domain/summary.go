package domain

import (
	"fmt"
	"strings"
)

// Summary — неизменяемая сводка (чек) оплаченного заказа.
type Summary struct {
	OrderID  string
	Customer Customer
	Status   OrderStatus
	Lines    []CartLine
	Totals   Totals
}

// NewSummary собирает сводку по текущему состоянию заказа.
func NewSummary(order *Order) (Summary, error) {
	if order.Status != OrderStatusPaid {
		return Summary{}, fmt.Errorf("order %s in status %s: %w", order.ID, order.Status, ErrSummaryUnavailable)
	}
	return Summary{
		OrderID:  order.ID,
		Customer: order.Customer,
		Status:   order.Status,
		Lines:    order.Cart.Lines(),
		Totals:   order.Cart.Totals(),
	}, nil
}

// Clone возвращает копию сводки с собственным срезом позиций.
func (s Summary) Clone() Summary {
	s.Lines = append([]CartLine(nil), s.Lines...)
	return s
}

// String рендерит чек. Суммы округляются до центов только здесь.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order Summary for Order ID: %s\n", s.OrderID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", s.Customer.Name, s.Customer.Email)
	fmt.Fprintf(&b, "Address: %s\n", s.Customer.Address)
	fmt.Fprintf(&b, "Status: %s\n", s.Status)
	b.WriteString("Items:\n")
	for _, line := range s.Lines {
		fmt.Fprintf(&b, "  - %s (Code: %s) x %d @ $%s each\n", line.Name, line.Code, line.Quantity, line.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "Subtotal: $%s\n", s.Totals.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Tax (7%%): $%s\n", s.Totals.Tax.StringFixed(2))
	fmt.Fprintf(&b, "Total: $%s\n", s.Totals.Total.StringFixed(2))
	b.WriteString("Thank you for your order!\n")
	return b.String()
}
