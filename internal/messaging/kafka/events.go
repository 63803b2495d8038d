package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события.
type EventType string

const (
	// EventTypeOrderConfirmed — заказ оплачен, клиенту нужно отправить подтверждение.
	EventTypeOrderConfirmed EventType = "order.confirmed"
)

// TopicOrderConfirmations — топик по умолчанию для подтверждений заказов.
const TopicOrderConfirmations = "checkout.order.confirmations"

// ConfirmationEvent — сообщение для сервиса рассылки писем.
type ConfirmationEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	OrderID   string    `json:"order_id"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConfirmationEvent создаёт событие подтверждения с уникальным идентификатором.
func NewConfirmationEvent(orderID, email, subject string) *ConfirmationEvent {
	return &ConfirmationEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderConfirmed,
		OrderID:   orderID,
		Email:     email,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
	}
}
