// Package kafka publishes reconciled incident snapshots for downstream
// consumers that want the merged feed without going through the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/aaroncolesmith/portland-crime-map/internal/config"
	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// Writer produces reconciled incidents to a Kafka topic.
// It implements pipeline.SnapshotExporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// ExportSnapshot serializes and publishes the reconciled incident set in a
// single WriteMessages call for efficiency.
func (w *Writer) ExportSnapshot(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish incident snapshot: %w", err)
	}
	w.logger.Debug("published incident snapshot", "count", len(incidents))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message. Incidents
// without an external ID are keyed by address so per-location updates stay on
// one partition either way.
func serializeToMessage(incident domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(incident)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	key := incident.ExternalID
	if key == "" {
		key = incident.Address
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(incident.Category)},
			{Key: "occurred_at", Value: []byte(incident.Time.Format(time.RFC3339))},
		},
	}, nil
}
