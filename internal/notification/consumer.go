package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// HandlerFunc processes one decoded message.
type HandlerFunc func(ctx context.Context, msg Message) error

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	handler HandlerFunc
	wg      sync.WaitGroup
}

func NewConsumer(brokers []string, topic, groupID string, handler HandlerFunc) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1 << 20,
			MaxWait:  500 * time.Millisecond,
		}),
		handler: handler,
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Info().Msg("Participation consumer started")
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Info().Msg("Participation consumer shutting down")
					return
				}
				log.Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(time.Second)
				continue
			}

			c.process(ctx, msg)

			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("failed to commit message")
			}
		}
	}()
}

// Stop waits for the consume loop to exit; cancel the Start context first.
func (c *Consumer) Stop() error {
	c.wg.Wait()
	return c.reader.Close()
}

func (c *Consumer) process(parent context.Context, km kafka.Message) {
	var msg Message
	if err := json.Unmarshal(km.Value, &msg); err != nil {
		log.Warn().Err(err).Int64("offset", km.Offset).Msg("skipping undecodable message")
		return
	}

	headers := headerCarrier(km.Headers)
	ctx := otel.GetTextMapPropagator().Extract(parent, &headers)
	ctx = log.Logger.With().Str("message_id", msg.ID).Logger().WithContext(ctx)

	if err := c.handler(ctx, msg); err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Uint("event_id", msg.EventID).Msg("message handler failed")
	}
}
