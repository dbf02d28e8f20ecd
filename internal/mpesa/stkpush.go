package mpesa

import (
	"context"
	"encoding/json"
	"log/slog"

	"donation-service/internal/logging"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const transactionTypePayBill = "CustomerPayBillOnline"

type PaymentRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string
	TransactionDesc  string
}

type InitiateResult struct {
	Success             bool   `json:"success"`
	MerchantRequestID   string `json:"merchantRequestID,omitempty"`
	CheckoutRequestID   string `json:"checkoutRequestID,omitempty"`
	ResponseCode        string `json:"responseCode,omitempty"`
	ResponseDescription string `json:"responseDescription,omitempty"`
	CustomerMessage     string `json:"customerMessage,omitempty"`
	Error               string `json:"error,omitempty"`
}

type StatusResult struct {
	Success         bool            `json:"success"`
	ResultCode      string          `json:"resultCode,omitempty"`
	ResultDesc      string          `json:"resultDesc,omitempty"`
	TransactionData json.RawMessage `json:"transactionData,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// Paid reports whether the queried payment completed.
func (r StatusResult) Paid() bool {
	return r.Success && Code(r.ResultCode).OK()
}

type stkPushRequest struct {
	BusinessShortCode string      `json:"BusinessShortCode"`
	Password          string      `json:"Password"`
	Timestamp         string      `json:"Timestamp"`
	TransactionType   string      `json:"TransactionType"`
	Amount            json.Number `json:"Amount"`
	PartyA            string      `json:"PartyA"`
	PartyB            string      `json:"PartyB"`
	PhoneNumber       string      `json:"PhoneNumber"`
	CallBackURL       string      `json:"CallBackURL"`
	AccountReference  string      `json:"AccountReference"`
	TransactionDesc   string      `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        Code   `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResponseCode        Code   `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ResultCode          Code   `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

var (
	errInvalidPhone  = errors.New("Invalid phone number")
	errInvalidAmount = errors.New("Amount must be a positive number")
	errAmountCents   = errors.New("Amount cannot have more than two decimal places")
)

// InitiateSTKPush asks Daraja to prompt the payer's phone for the amount.
// Failures are reported in the result, never as a Go error.
func (c *Client) InitiateSTKPush(ctx context.Context, req PaymentRequest) InitiateResult {
	phone := NormalizePhone(req.PhoneNumber)
	ctx = logging.AppendCtx(ctx, slog.String("phone", phone))

	res, err := c.initiate(ctx, phone, req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error initiating STK push", "error", err)
		requestCounter("stkpush", "error").Inc()
		return InitiateResult{Success: false, Error: initiateErrorMessage(err)}
	}

	c.logger.InfoContext(ctx, "STK push accepted", "checkoutRequestId", res.CheckoutRequestID)
	requestCounter("stkpush", "success").Inc()
	return InitiateResult{
		Success:             true,
		MerchantRequestID:   res.MerchantRequestID,
		CheckoutRequestID:   res.CheckoutRequestID,
		ResponseCode:        string(res.ResponseCode),
		ResponseDescription: res.ResponseDescription,
		CustomerMessage:     res.CustomerMessage,
	}
}

func (c *Client) initiate(ctx context.Context, phone string, req PaymentRequest) (*stkPushResponse, error) {
	if !validPhone(phone) {
		return nil, errInvalidPhone
	}
	if !req.Amount.IsPositive() {
		return nil, errInvalidAmount
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, errAmountCents
	}

	timestamp, password := c.sign()
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionTypePayBill,
		Amount:            json.Number(req.Amount.String()),
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.TransactionDesc,
	}

	var res stkPushResponse
	if err := c.postJSON(ctx, stkPushPath, payload, &res); err != nil {
		return nil, err
	}
	if res.ResponseCode != "" && !res.ResponseCode.OK() {
		return nil, &ProviderError{StatusCode: 200, Code: string(res.ResponseCode), Message: res.ResponseDescription}
	}
	return &res, nil
}

func initiateErrorMessage(err error) string {
	if errors.Is(err, errInvalidPhone) || errors.Is(err, errInvalidAmount) || errors.Is(err, errAmountCents) {
		return err.Error()
	}

	var terr *TokenError
	if errors.As(err, &terr) {
		return initiateFailedMessage
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return initiateFailedMessage
}

// QueryStatus asks Daraja for the outcome of an earlier push. A successful
// result still carries the payment's own ResultCode, which is non-zero when
// the payer cancelled or the push timed out.
func (c *Client) QueryStatus(ctx context.Context, checkoutRequestID string) StatusResult {
	ctx = logging.AppendCtx(ctx, slog.String("checkoutRequestId", checkoutRequestID))

	raw, res, err := c.query(ctx, checkoutRequestID)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error checking transaction status", "error", err)
		requestCounter("stkquery", "error").Inc()
		return StatusResult{Success: false, Error: statusFailedMessage}
	}

	requestCounter("stkquery", "success").Inc()
	return StatusResult{
		Success:         true,
		ResultCode:      string(res.ResultCode),
		ResultDesc:      res.ResultDesc,
		TransactionData: raw,
	}
}

func (c *Client) query(ctx context.Context, checkoutRequestID string) (json.RawMessage, *stkQueryResponse, error) {
	if checkoutRequestID == "" {
		return nil, nil, errors.New("empty checkout request id")
	}

	timestamp, password := c.sign()
	payload := stkQueryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var raw json.RawMessage
	if err := c.postJSON(ctx, stkQueryPath, payload, &raw); err != nil {
		return nil, nil, err
	}

	var res stkQueryResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, nil, errors.Wrap(err, "decode query response")
	}
	if res.ResponseCode != "" && !res.ResponseCode.OK() {
		return nil, nil, &ProviderError{StatusCode: 200, Code: string(res.ResponseCode), Message: res.ResponseDescription}
	}
	return raw, &res, nil
}
