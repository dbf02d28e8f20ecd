package event_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"donation-service/internal/event"
	"donation-service/internal/message"
	"donation-service/internal/mpesa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) SaveTransaction(ctx context.Context, tx mpesa.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func TestProcessor_Process(t *testing.T) {
	receipt := "NLJ7RT61SV"
	tx := mpesa.Transaction{CheckoutRequestID: "ws_CO_1", MpesaReceiptNumber: &receipt}

	t.Run("Success", func(t *testing.T) {
		store := new(storeMock)
		store.On("SaveTransaction", mock.Anything, tx).Return(nil).Once()

		err := event.NewProcessor(store, slog.Default()).
			Process(context.Background(), message.NewDonationCompleted(tx, time.Now()))

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Store error", func(t *testing.T) {
		store := new(storeMock)
		store.On("SaveTransaction", mock.Anything, tx).Return(errors.New("connection refused")).Once()

		err := event.NewProcessor(store, slog.Default()).
			Process(context.Background(), message.NewDonationCompleted(tx, time.Now()))

		assert.ErrorContains(t, err, "connection refused")
		store.AssertExpectations(t)
	})

	t.Run("Unknown event", func(t *testing.T) {
		store := new(storeMock)

		err := event.NewProcessor(store, slog.Default()).
			Process(context.Background(), message.DonationEvent{Event: "donation.refunded"})

		assert.NoError(t, err)
		store.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	})
}
