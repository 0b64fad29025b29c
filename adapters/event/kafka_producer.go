package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/logger"
)

const (
	TopicPortfolioViews = "portfolio.views"
)

type KafkaProducerClient struct {
	ViewEventsWriter *kafka.Writer
	logger           logger.Logger
}

// NewKafkaProducerClient returns a no-op publisher when no brokers are
// configured, so the web app runs without Kafka.
func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (analytics.Publisher, func(), error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		log.Warn("Kafka brokers not configured, view events are dropped")
		return NopPublisher{}, func() {}, nil
	}

	viewWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicPortfolioViews,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver view events", err, zap.Int("count", len(messages)))
			}
		},
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	c := &KafkaProducerClient{ViewEventsWriter: viewWriter, logger: log}
	return c, c.Close, nil
}

func (c *KafkaProducerClient) PublishView(ctx context.Context, ev analytics.ViewEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal view event: %w", err)
	}
	return c.ViewEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Username),
		Value: payload,
		Time:  ev.ViewedAt,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ViewEventsWriter != nil {
		if err := c.ViewEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishView(context.Context, analytics.ViewEvent) error { return nil }

// DecodeViewEvent parses a message value written by PublishView.
func DecodeViewEvent(value []byte) (analytics.ViewEvent, error) {
	var ev analytics.ViewEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return ev, fmt.Errorf("decode view event: %w", err)
	}
	if ev.Username == "" {
		return ev, fmt.Errorf("view event has no username")
	}
	return ev, nil
}
