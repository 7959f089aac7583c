package relay

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink はキーでパーティションを決める（同じ本・注文は順番どおり）
type KafkaSink struct {
	w *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (k *KafkaSink) Send(ctx context.Context, msg Message) error {
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Body,
		Headers: []kafka.Header{{Key: "type", Value: []byte(msg.Type)}},
	})
}

func (k *KafkaSink) Close() error {
	return k.w.Close()
}
