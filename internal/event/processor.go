package event

import (
	"context"
	"log/slog"

	"donation-service/internal/message"
	"donation-service/internal/mpesa"
	"github.com/pkg/errors"
)

// Processor stores donation events read from Kafka.
type Processor struct {
	store  mpesa.TransactionSaver
	logger *slog.Logger
}

func NewProcessor(store mpesa.TransactionSaver, logger *slog.Logger) *Processor {
	return &Processor{store: store, logger: logger}
}

func (p *Processor) Process(ctx context.Context, event message.DonationEvent) error {
	if event.Event != message.EventDonationCompleted {
		p.logger.WarnContext(ctx, "Skipping unknown event", "event", event.Event)
		return nil
	}

	p.logger.InfoContext(ctx, "Processing donation event", "checkoutRequestId", event.Payload.CheckoutRequestID)

	if err := p.store.SaveTransaction(ctx, event.Payload); err != nil {
		return errors.Wrapf(err, "store donation event %s", event.ID)
	}

	p.logger.InfoContext(ctx, "Successfully processed donation event")
	return nil
}
