package domain

import "fmt"

// Customer — контактные данные и адрес доставки. Ядро их не изменяет.
type Customer struct {
	Name    string
	Email   string
	Address string
}

func (c Customer) String() string {
	return fmt.Sprintf("Customer -> %s (Email: %s, Address: %s)", c.Name, c.Email, c.Address)
}
