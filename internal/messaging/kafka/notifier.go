package kafka

import (
	"context"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/notification"
)

// Notifier публикует подтверждения заказов в Kafka; письмо отправляет внешний сервис рассылки.
type Notifier struct {
	producer *Producer
	topic    string
}

// NewNotifier создаёт нотификатор поверх producer. Пустой topic заменяется TopicOrderConfirmations.
func NewNotifier(producer *Producer, topic string) *Notifier {
	if topic == "" {
		topic = TopicOrderConfirmations
	}
	return &Notifier{producer: producer, topic: topic}
}

// SendConfirmation публикует ConfirmationEvent с ключом orderID.
func (n *Notifier) SendConfirmation(ctx context.Context, email, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := NewConfirmationEvent(orderID, email, notification.ConfirmationSubject)
	return n.producer.PublishEvent(n.topic, orderID, event)
}

var _ domain.Notifier = (*Notifier)(nil)
