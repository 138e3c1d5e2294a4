package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// Kafka publishes events asynchronously, keyed by record so every change to
// one record lands on the same partition in order.
type Kafka struct {
	w *kafka.Writer
}

func NewKafka(cfg KafkaConfig, log logrus.FieldLogger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		ErrorLogger:  kafka.LoggerFunc(log.Errorf),
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.WithFields(logrus.Fields{
					"topic":    cfg.Topic,
					"messages": len(msgs),
					"message":  err,
				}).Error("publishing events")
			}
		},
	}

	return &Kafka{w: w}
}

func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}

	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event[%s]: %w", ev.ID, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

func encode(ev Event) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("cannot marshal event[%s]: %w", ev.ID, err)
	}

	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}, nil
}
