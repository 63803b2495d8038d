package notification

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// ConfirmationSubject — тема письма с подтверждением заказа.
const ConfirmationSubject = "Order confirmation"

// LogNotifier имитирует отправку письма записью в лог.
type LogNotifier struct {
	logger *log.Entry
}

// NewLogNotifier создаёт нотификатор, пишущий в переданный logger.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.New().WithField("component", "notifier")
	}
	return &LogNotifier{logger: logger}
}

// SendConfirmation пишет в лог адресата и номер заказа.
func (n *LogNotifier) SendConfirmation(ctx context.Context, email, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.WithFields(log.Fields{
		"to":       email,
		"subject":  ConfirmationSubject,
		"order_id": orderID,
	}).Info("sending confirmation email")
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
