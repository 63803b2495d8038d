package validation

import (
	"regexp"
	"strings"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// emailPattern повторяет общепринятую грамматику адреса (HTML5 / RFC 5322 без комментариев и кавычек).
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

// CustomerValidator проверяет данные клиента перед оплатой.
type CustomerValidator struct{}

// NewCustomerValidator возвращает валидатор клиента.
func NewCustomerValidator() CustomerValidator {
	return CustomerValidator{}
}

// Validate проверяет имя, email и адрес по порядку и возвращает первое нарушение.
func (CustomerValidator) Validate(customer domain.Customer) error {
	if isBlank(customer.Name) {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if isBlank(customer.Email) {
		return &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	if !emailPattern.MatchString(customer.Email) {
		return &domain.ValidationError{Field: "email", Reason: "has invalid format"}
	}
	if isBlank(customer.Address) {
		return &domain.ValidationError{Field: "address", Reason: "is required"}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
