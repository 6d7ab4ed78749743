package service

import (
	"encoding/json"

	"github.com/IBM/sarama"
)

type Enqueuer interface {
	Enqueue(topic string, v any) error
}

func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	return &enqueuerImpl{
		producer: producer,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

// NewNopEnqueuer keeps the service wiring uniform when no brokers are
// configured.
func NewNopEnqueuer() Enqueuer {
	return nopEnqueuer{}
}

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(string, any) error { return nil }
