package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SendConfirmation(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	notifier := NewNotifier(NewProducerFromSync(mockProducer, nil), "")

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ConfirmationEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.OrderID != "ORD-1" || event.Email != "jane.smith@example.com" {
			return fmt.Errorf("unexpected event %+v", event)
		}
		if event.EventType != EventTypeOrderConfirmed {
			return fmt.Errorf("unexpected event type %s", event.EventType)
		}
		return nil
	})

	require.NoError(t, notifier.SendConfirmation(context.Background(), "jane.smith@example.com", "ORD-1"))
	require.Equal(t, TopicOrderConfirmations, notifier.topic)
	require.NoError(t, mockProducer.Close())
}

func TestNotifier_SendConfirmation_BrokerDown(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	notifier := NewNotifier(NewProducerFromSync(mockProducer, nil), "custom.topic")

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := notifier.SendConfirmation(context.Background(), "a@b", "ORD-2")
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, mockProducer.Close())
}

func TestNotifier_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	notifier := NewNotifier(NewProducerFromSync(mockProducer, nil), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, notifier.SendConfirmation(ctx, "a@b", "ORD-3"), context.Canceled)
	require.NoError(t, mockProducer.Close())
}
