package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
}

// NewPublisher returns a Kafka publisher for topic, or a publisher that only
// logs when no brokers are configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

// encode keys messages by event so one event's changes stay ordered.
func encode(ctx context.Context, msg Message) (kafka.Message, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s message: %w", msg.Type, err)
	}

	headers := headerCarrier{{Key: "type", Value: []byte(msg.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	return kafka.Message{
		Key:     []byte(strconv.FormatUint(uint64(msg.EventID), 10)),
		Value:   value,
		Headers: headers,
		Time:    msg.OccurredAt,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, msg Message) error {
	km, err := encode(ctx, msg)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("publish %s for event %d: %w", msg.Type, msg.EventID, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops messages. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, msg Message) error {
	zerolog.Ctx(ctx).Debug().Str("type", string(msg.Type)).Uint("event_id", msg.EventID).Msg("kafka disabled, message dropped")
	return nil
}

func (NopPublisher) Close() error { return nil }

// PublishQuietly publishes and logs failures. Participation writes have
// already committed by the time a message goes out.
func PublishQuietly(ctx context.Context, p Publisher, msg Message) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("type", string(msg.Type)).Msg("publish failed")
	}
}
