package message

import (
	"time"

	"donation-service/internal/mpesa"
	"github.com/google/uuid"
)

const EventDonationCompleted = "donation.completed"

// DonationEvent is published for every successful payment callback.
type DonationEvent struct {
	ID         uuid.UUID         `json:"id"`
	Event      string            `json:"event"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    mpesa.Transaction `json:"payload"`
}

func NewDonationCompleted(tx mpesa.Transaction, now time.Time) DonationEvent {
	return DonationEvent{
		ID:         uuid.New(),
		Event:      EventDonationCompleted,
		OccurredAt: now,
		Payload:    tx,
	}
}

// Key orders events for the same payment onto one partition.
func (e DonationEvent) Key() string {
	if e.Payload.MpesaReceiptNumber != nil {
		return *e.Payload.MpesaReceiptNumber
	}
	return e.Payload.CheckoutRequestID
}
