package db

import (
	"time"

	"donation-service/internal/mpesa"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusCompleted    = "completed"
	PaymentMethodMpesa = "mpesa"
)

type DonationEntity struct {
	ID                 uuid.UUID
	CheckoutRequestID  string
	MerchantRequestID  string
	Amount             *decimal.Decimal
	MpesaReceiptNumber *string
	PhoneNumber        *string
	TransactionDate    *time.Time
	Status             string
	PaymentMethod      string
	CreatedAt          time.Time
}

// NewCompletedDonation maps a callback transaction onto a row.
func NewCompletedDonation(tx mpesa.Transaction, now time.Time) *DonationEntity {
	entity := &DonationEntity{
		ID:                 uuid.New(),
		CheckoutRequestID:  tx.CheckoutRequestID,
		MerchantRequestID:  tx.MerchantRequestID,
		Amount:             tx.Amount,
		MpesaReceiptNumber: tx.MpesaReceiptNumber,
		PhoneNumber:        tx.PhoneNumber,
		Status:             StatusCompleted,
		PaymentMethod:      PaymentMethodMpesa,
		CreatedAt:          now,
	}
	if ts, ok := tx.Time(); ok {
		entity.TransactionDate = &ts
	}
	return entity
}
