package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"donation-service/internal/message"
	"donation-service/internal/mpesa"
	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

var (
	publishSuccessCounter = metrics.GetOrCreateCounter(`kafka_writer_total{result="success",type="donation_event"}`)
	publishErrorCounter   = metrics.GetOrCreateCounter(`kafka_writer_total{result="error",type="donation_event"}`)
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// DonationPublisher hands completed transactions to Kafka instead of writing
// them to the database inside the webhook request.
type DonationPublisher struct {
	writer MessageWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewDonationPublisher(writer MessageWriter, logger *slog.Logger) *DonationPublisher {
	return &DonationPublisher{writer: writer, logger: logger, now: time.Now}
}

func (p *DonationPublisher) SaveTransaction(ctx context.Context, tx mpesa.Transaction) error {
	event := message.NewDonationCompleted(tx, p.now())

	value, err := json.Marshal(event)
	if err != nil {
		publishErrorCounter.Inc()
		return errors.Wrap(err, "marshal donation event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	})
	if err != nil {
		publishErrorCounter.Inc()
		return errors.Wrap(err, "publish donation event")
	}

	p.logger.InfoContext(ctx, "Donation event published", "id", event.ID)
	publishSuccessCounter.Inc()
	return nil
}
