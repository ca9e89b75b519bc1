// Package events carries the real-time sentiment channel: whenever a
// ticker's active predictions change, the API publishes the recomputed
// sentiment, and consumers merge it into already-rendered widget state.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
)

// SentimentPublisher writes sentiment updates to the sentiment topic. A
// publish failure is logged and swallowed: the channel is best-effort and
// must never fail the mutation that triggered it.
type SentimentPublisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewSentimentPublisher(brokers []string, topic string, log *slog.Logger) *SentimentPublisher {
	return &SentimentPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		log: log.With("component", "sentiment-publisher"),
	}
}

func (p *SentimentPublisher) Publish(ctx context.Context, update dto.SentimentUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		p.log.Error("failed to encode sentiment update", "ticker", update.Ticker, "error", err)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(update.Ticker),
		Value: payload,
		Time:  update.UpdatedAt,
	})
	if err != nil {
		p.log.Warn("failed to publish sentiment update", "ticker", update.Ticker, "error", err)
	}
}

func (p *SentimentPublisher) Close() error {
	return p.writer.Close()
}

// SentimentSink receives decoded sentiment updates. The widget service
// implements this to refresh its famous-stocks slice.
type SentimentSink interface {
	ApplySentimentUpdate(update dto.SentimentUpdate)
}

// SentimentConsumer reads the sentiment topic and forwards updates to a
// sink. Updates carry no ordering guarantee beyond last-write-wins per
// ticker, which keyed partitioning preserves.
type SentimentConsumer struct {
	reader *kafka.Reader
	sink   SentimentSink
	log    *slog.Logger
}

func NewSentimentConsumer(brokers []string, topic, group string, sink SentimentSink, log *slog.Logger) *SentimentConsumer {
	return &SentimentConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  group,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  500 * time.Millisecond,
		}),
		sink: sink,
		log:  log.With("component", "sentiment-consumer"),
	}
}

// Run consumes until ctx is cancelled. Malformed messages are logged and
// skipped; the loop only stops on cancellation or a closed reader.
func (c *SentimentConsumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.log.Warn("sentiment read failed", "error", err)
			continue
		}

		var update dto.SentimentUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			c.log.Warn("skipping malformed sentiment update", "offset", msg.Offset, "error", err)
			continue
		}
		c.sink.ApplySentimentUpdate(update)
	}
}
