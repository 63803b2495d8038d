package domain

// DeclineCardNumber — номер карты, который симулятор платежей всегда отклоняет.
const DeclineCardNumber = "INVALID_CARD_NUMBER"

// Card — платёжная карта. Номер, срок и CVV не проверяются.
type Card struct {
	Number     string
	ExpiryDate string
	CVV        string
}

// LastFour возвращает последние четыре символа номера.
func (c Card) LastFour() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// String не раскрывает полный номер карты в логах.
func (c Card) String() string {
	return c.LastFour()
}
