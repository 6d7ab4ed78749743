package service

import (
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-labs/lending-service/internal/model"
	"github.com/bookshelf-labs/lending-service/pkg/kafka"
)

func TestEnqueuer_Enqueue(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close() //nolint:errcheck
	producer.ExpectSendMessageAndSucceed()

	enq := NewEnqueuer(producer)
	err := enq.Enqueue(kafka.LendingTopic, model.LendingEvent{
		EventUid: "e1", Action: model.LendingActionBorrow, BorrowingID: 1,
	})
	require.NoError(t, err)
}

func TestEnqueuer_ProducerError(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close() //nolint:errcheck
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	enq := NewEnqueuer(producer)
	err := enq.Enqueue(kafka.LendingTopic, model.LendingEvent{EventUid: "e2"})
	require.Error(t, err)
}

func TestNopEnqueuer(t *testing.T) {
	t.Parallel()
	require.NoError(t, NewNopEnqueuer().Enqueue(kafka.LendingTopic, struct{}{}))
}
