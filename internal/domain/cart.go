package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var taxRate = decimal.RequireFromString("0.07")

// TaxRate возвращает фиксированную ставку налога с продаж (7%).
func TaxRate() decimal.Decimal {
	return taxRate
}

// CartLine — позиция корзины. Ссылается на товар склада по коду
// и хранит снимок названия и цены на момент добавления.
type CartLine struct {
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LinePrice возвращает стоимость позиции: цена × количество.
func (l CartLine) LinePrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals — рассчитанные суммы корзины без округления.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Cart хранит позиции в порядке добавления.
type Cart struct {
	lines []CartLine
}

// Add добавляет позицию в конец корзины.
func (c *Cart) Add(item Item, qty int) {
	c.lines = append(c.lines, CartLine{
		Code:      item.Code,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  qty,
	})
}

// Lines возвращает копию позиций.
func (c *Cart) Lines() []CartLine {
	result := make([]CartLine, len(c.lines))
	copy(result, c.lines)
	return result
}

// Len возвращает количество позиций.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Empty сообщает, что в корзине нет ни одной позиции.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Subtotal — сумма стоимостей позиций.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.LinePrice())
	}
	return subtotal
}

// Totals считает subtotal, налог и итог. Округление выполняется только при выводе.
func (c *Cart) Totals() Totals {
	subtotal := c.Subtotal()
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// QuantitiesByCode суммирует количество по коду товара.
// Используется складом, чтобы списывать одну позицию один раз.
func QuantitiesByCode(lines []CartLine) map[string]int {
	result := make(map[string]int, len(lines))
	for _, line := range lines {
		result[line.Code] += line.Quantity
	}
	return result
}

func (c *Cart) String() string {
	parts := make([]string, 0, len(c.lines))
	for _, line := range c.lines {
		parts = append(parts, line.Name+" x "+strconv.Itoa(line.Quantity))
	}
	return "Cart -> " + strings.Join(parts, ", ")
}
