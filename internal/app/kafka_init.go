package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/service/notification"
)

// initNotifier выбирает канал подтверждений: Kafka при заданных brokers, иначе лог.
// Недоступная Kafka не останавливает запуск.
func initNotifier(brokers []string, topic string, logger *log.Entry) (domain.Notifier, *kafka.Producer) {
	logNotifier := notification.NewLogNotifier(logger.WithField("component", "notifier"))
	if len(brokers) == 0 {
		return logNotifier, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return logNotifier, nil
	}

	logger.WithFields(log.Fields{
		"brokers": brokers,
		"topic":   topic,
	}).Info("kafka producer initialized")
	return kafka.NewNotifier(producer, topic), producer
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
