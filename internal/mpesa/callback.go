package mpesa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"donation-service/internal/logging"
	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	itemAmount          = "Amount"
	itemReceiptNumber   = "MpesaReceiptNumber"
	itemTransactionDate = "TransactionDate"
	itemPhoneNumber     = "PhoneNumber"
)

// Transaction is a completed payment as reported by a callback. Metadata
// fields the provider left out are nil.
type Transaction struct {
	MerchantRequestID  string           `json:"merchantRequestID"`
	CheckoutRequestID  string           `json:"checkoutRequestID"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	MpesaReceiptNumber *string          `json:"mpesaReceiptNumber,omitempty"`
	TransactionDate    *string          `json:"transactionDate,omitempty"`
	PhoneNumber        *string          `json:"phoneNumber,omitempty"`
}

// Time parses TransactionDate, which Daraja sends as YYYYMMDDHHMMSS in
// East Africa Time.
func (t Transaction) Time() (time.Time, bool) {
	if t.TransactionDate == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, *t.TransactionDate, eat)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

var eat = time.FixedZone("EAT", 3*60*60)

// Callback is the parsed form of the stkCallback body.
type Callback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        Code
	ResultDesc        string
	// Transaction is set only when ResultCode is zero.
	Transaction *Transaction
}

func (cb *Callback) Succeeded() bool {
	return cb.ResultCode.OK()
}

type callbackEnvelope struct {
	Body *struct {
		StkCallback *stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        *Code  `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  *struct {
		// Item is nil when absent or null; an empty array is valid.
		Item *[]metadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type metadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

var (
	ErrMissingBody     = errors.New("callback has no Body.stkCallback")
	ErrMissingCode     = errors.New("callback has no ResultCode")
	ErrMissingMetadata = errors.New("successful callback has no CallbackMetadata")
)

// ParseCallback decodes a Daraja STK callback. Structural problems are
// returned as errors; metadata items that are missing or not scalar are
// left absent on the Transaction.
func ParseCallback(payload []byte) (*Callback, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.Wrap(err, "decode callback")
	}
	if env.Body == nil || env.Body.StkCallback == nil {
		return nil, ErrMissingBody
	}

	raw := env.Body.StkCallback
	if raw.ResultCode == nil {
		return nil, ErrMissingCode
	}

	cb := &Callback{
		MerchantRequestID: raw.MerchantRequestID,
		CheckoutRequestID: raw.CheckoutRequestID,
		ResultCode:        *raw.ResultCode,
		ResultDesc:        raw.ResultDesc,
	}
	if !cb.Succeeded() {
		return cb, nil
	}

	if raw.CallbackMetadata == nil || raw.CallbackMetadata.Item == nil {
		return nil, ErrMissingMetadata
	}

	tx := &Transaction{
		MerchantRequestID: raw.MerchantRequestID,
		CheckoutRequestID: raw.CheckoutRequestID,
	}
	for _, item := range *raw.CallbackMetadata.Item {
		value, ok, err := scalarString(item.Value)
		if err != nil || !ok {
			continue
		}

		switch item.Name {
		case itemAmount:
			if amount, err := decimal.NewFromString(value); err == nil && tx.Amount == nil {
				tx.Amount = &amount
			}
		case itemReceiptNumber:
			tx.MpesaReceiptNumber = first(tx.MpesaReceiptNumber, value)
		case itemTransactionDate:
			tx.TransactionDate = first(tx.TransactionDate, value)
		case itemPhoneNumber:
			tx.PhoneNumber = first(tx.PhoneNumber, value)
		}
	}
	cb.Transaction = tx

	return cb, nil
}

// first keeps the earliest occurrence of a repeated item.
func first(current *string, value string) *string {
	if current != nil {
		return current
	}
	return &value
}

// CallbackOutcome is what handling a callback produced. Error is set when
// Success is false.
type CallbackOutcome struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Acknowledgement is the body Daraja expects back from the webhook.
type Acknowledgement struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func (o CallbackOutcome) Ack() Acknowledgement {
	if o.Success {
		return Acknowledgement{ResultCode: 0, ResultDesc: "Success"}
	}
	return Acknowledgement{ResultCode: 1, ResultDesc: o.Error}
}

// CallbackHandler turns raw webhook payloads into outcomes and hands
// completed transactions to a TransactionSaver.
type CallbackHandler struct {
	saver  TransactionSaver
	logger *slog.Logger
}

func NewCallbackHandler(saver TransactionSaver, logger *slog.Logger) *CallbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallbackHandler{saver: saver, logger: logger}
}

// Handle never panics. A saver error is logged and counted but does not
// change the outcome: the payment already happened on the provider side.
func (h *CallbackHandler) Handle(ctx context.Context, payload []byte) (outcome CallbackOutcome) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "Panic while handling callback", "panic", fmt.Sprint(r))
			callbackCounter("panic").Inc()
			outcome = CallbackOutcome{Success: false, Error: callbackFailedMessage}
		}
	}()

	cb, err := ParseCallback(payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error parsing callback", "error", err)
		callbackCounter("malformed").Inc()
		return CallbackOutcome{Success: false, Error: callbackFailedMessage}
	}

	ctx = logging.AppendCtx(ctx, slog.String("checkoutRequestId", cb.CheckoutRequestID))

	if !cb.Succeeded() {
		h.logger.InfoContext(ctx, "Payment not completed", "resultCode", cb.ResultCode, "resultDesc", cb.ResultDesc)
		callbackCounter("declined").Inc()
		return CallbackOutcome{Success: false, Error: cb.ResultDesc}
	}

	if h.saver != nil {
		if err := h.saver.SaveTransaction(ctx, *cb.Transaction); err != nil {
			h.logger.ErrorContext(ctx, "Error saving transaction", "error", err)
			callbackCounter("save_error").Inc()
		}
	}

	callbackCounter("success").Inc()
	return CallbackOutcome{Success: true, Transaction: cb.Transaction}
}

func callbackCounter(result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`mpesa_callbacks_total{result=%q}`, result))
}
