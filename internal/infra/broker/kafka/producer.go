package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Producer is a synchronous, idempotent Kafka publisher. Ordering per
// partition key matters for booking events, so idempotence is on and the
// in-flight window is pinned to one request (sarama requires that pairing).
type Producer struct {
	sync   sarama.SyncProducer
	logger *slog.Logger
}

func NewProducer(brokers []string, logger *slog.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = "bookmytourguide"
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	cfg.Net.MaxOpenRequests = 1

	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: producer init: %w", err)
	}
	return &Producer{sync: sync, logger: logger}, nil
}

func (p *Producer) Publish(_ context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", topic, err)
	}
	if p.logger != nil {
		p.logger.Debug("event published", "topic", topic, "key", key, "partition", partition, "offset", offset)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
