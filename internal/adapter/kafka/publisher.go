package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/climops/precip-analysis/internal/config"
	"github.com/climops/precip-analysis/internal/domain"
)

// Publisher produces window reports to a Kafka topic.
// It implements pipeline.ReportPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.ReportBrokers...),
		Topic:        cfg.ReportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and delivers the run's window reports in a single
// WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, reports []domain.WindowReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish window reports: %w", err)
	}
	p.logger.Debug("window reports published", "count", len(reports))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a WindowReport into a Kafka message keyed by
// the window's end date, so consumers can compact per window.
func serializeToMessage(report domain.WindowReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize window report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.WindowEnd),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(report.Outcome)},
			{Key: "completed_at", Value: []byte(report.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
