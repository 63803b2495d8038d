package app

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// DefaultCatalog возвращает стартовый набор товаров склада.
func DefaultCatalog() []domain.Item {
	return []domain.Item{
		{Code: "ITEM001", Name: "Super Widget", UnitPrice: decimal.RequireFromString("19.99"), Stock: 10},
		{Code: "ITEM002", Name: "Mega Gadget", UnitPrice: decimal.RequireFromString("29.99"), Stock: 5},
		{Code: "ITEM003", Name: "Basic Thingamajig", UnitPrice: decimal.RequireFromString("9.99"), Stock: 20},
	}
}
