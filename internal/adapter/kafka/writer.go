package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/ev-scenario-etl/internal/config"
	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
)

// Writer publishes scenario results to a Kafka topic.
// It implements pipeline.ResultPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one result, keyed by region so a region's results land on
// the same partition in order.
func (w *Writer) Publish(ctx context.Context, res domain.ScenarioResult) error {
	msg, err := serializeToMessage(res)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write scenario result: %w", err)
	}
	w.logger.Debug("scenario result published", "topic", w.writer.Topic, "region", res.Input.RegionKey)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ScenarioResult into a Kafka message.
func serializeToMessage(res domain.ScenarioResult) (kafkago.Message, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize scenario result: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "region", Value: []byte(res.Input.RegionKey)},
		{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
	}
	if res.Input.Year != nil {
		headers = append(headers, kafkago.Header{Key: "year", Value: []byte(fmt.Sprint(*res.Input.Year))})
	}
	return kafkago.Message{
		Key:     []byte(res.Input.RegionKey),
		Value:   data,
		Headers: headers,
	}, nil
}

// DecodeMessage reverses serializeToMessage for consumers of the topic.
func DecodeMessage(msg kafkago.Message) (domain.ScenarioResult, error) {
	var res domain.ScenarioResult
	if err := json.Unmarshal(msg.Value, &res); err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("decode scenario result: %w", err)
	}
	return res, nil
}
