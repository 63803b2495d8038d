package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Item — складская карточка товара.
type Item struct {
	// Code — уникальный код товара, например ITEM001.
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	// Stock — физический остаток на складе.
	Stock int
	// Reserved — единицы, удерживаемые незавершёнными заказами.
	Reserved int
}

// Available возвращает остаток, который ещё можно зарезервировать.
func (i Item) Available() int {
	return i.Stock - i.Reserved
}

// Validate проверяет инварианты карточки товара.
func (i Item) Validate() error {
	switch {
	case i.Code == "":
		return fmt.Errorf("item code is required")
	case i.UnitPrice.IsNegative():
		return fmt.Errorf("item %s: price must be non-negative", i.Code)
	case i.Stock < 0:
		return fmt.Errorf("item %s: stock must be non-negative", i.Code)
	case i.Reserved < 0 || i.Reserved > i.Stock:
		return fmt.Errorf("item %s: reserved must be within [0, stock]", i.Code)
	}
	return nil
}

func (i Item) String() string {
	return fmt.Sprintf("Item -> %s (ID: %s) has stock of %d for $%s each", i.Name, i.Code, i.Stock, i.UnitPrice.StringFixed(2))
}
