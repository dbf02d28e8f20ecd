package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	contentType = "application/json"

	resultSuccess   = 0
	resultCancelled = 1032
)

// Daraja imitates the sandbox token, STK push and query endpoints, and
// posts a callback for every accepted push after callbackDelay.
type Daraja struct {
	sender        *Sender
	callbackDelay time.Duration
	now           func() time.Time

	mu       sync.Mutex
	payments map[string]*payment
}

type payment struct {
	merchantRequestID string
	amount            decimal.Decimal
	phone             string
	completed         bool
	resultCode        int
	resultDesc        string
}

type ErrorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type stkPushRequest struct {
	BusinessShortCode string          `json:"BusinessShortCode"`
	Password          string          `json:"Password"`
	Timestamp         string          `json:"Timestamp"`
	Amount            decimal.Decimal `json:"Amount"`
	PhoneNumber       string          `json:"PhoneNumber"`
	CallBackURL       string          `json:"CallBackURL"`
	AccountReference  string          `json:"AccountReference"`
}

type stkQueryRequest struct {
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

func NewDaraja(sender *Sender, callbackDelay time.Duration) *Daraja {
	return &Daraja{
		sender:        sender,
		callbackDelay: callbackDelay,
		now:           time.Now,
		payments:      make(map[string]*payment),
	}
}

func (d *Daraja) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /oauth/v1/generate", d.tokenHandler)
	mux.HandleFunc("POST /mpesa/stkpush/v1/processrequest", d.stkPushHandler)
	mux.HandleFunc("POST /mpesa/stkpushquery/v1/query", d.stkQueryHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{RequestID: uuid.NewString(), ErrorCode: code, ErrorMessage: msg})
}

func (d *Daraja) tokenHandler(w http.ResponseWriter, r *http.Request) {
	key, secret, ok := r.BasicAuth()
	if !ok || key == "" || secret == "" || r.URL.Query().Get("grant_type") != "client_credentials" {
		writeError(w, http.StatusBadRequest, "400.008.01", "Invalid Authentication passed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": strings.ReplaceAll(uuid.NewString(), "-", ""),
		"expires_in":   "3599",
	})
}

func authorized(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (d *Daraja) stkPushHandler(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "404.001.03", "Invalid Access Token")
		return
	}

	var req stkPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "400.002.02", "Bad Request - Invalid Body")
		return
	}
	if req.Password == "" || len(req.Timestamp) != 14 {
		writeError(w, http.StatusBadRequest, "400.002.02", "Bad Request - Invalid Timestamp")
		return
	}
	if len(req.PhoneNumber) != 12 || !strings.HasPrefix(req.PhoneNumber, "254") {
		writeError(w, http.StatusBadRequest, "400.002.02", "Bad Request - Invalid PhoneNumber")
		return
	}

	checkoutID := fmt.Sprintf("ws_CO_%s%s", d.now().Format("02012006150405"), req.PhoneNumber[3:])
	p := &payment{
		merchantRequestID: fmt.Sprintf("%d-%d-1", d.now().Unix()%100000, d.now().UnixNano()%100000000),
		amount:            req.Amount,
		phone:             req.PhoneNumber,
	}

	d.mu.Lock()
	d.payments[checkoutID] = p
	d.mu.Unlock()

	go d.complete(context.WithoutCancel(r.Context()), checkoutID, req.CallBackURL)

	writeJSON(w, http.StatusOK, map[string]string{
		"MerchantRequestID":   p.merchantRequestID,
		"CheckoutRequestID":   checkoutID,
		"ResponseCode":        "0",
		"ResponseDescription": "Success. Request accepted for processing",
		"CustomerMessage":     "Success. Request accepted for processing",
	})
}

// complete settles the payment and sends its callback. Amounts ending in 1
// are treated as cancelled by the payer.
func (d *Daraja) complete(ctx context.Context, checkoutID, callbackURL string) {
	time.Sleep(d.callbackDelay)

	d.mu.Lock()
	p := d.payments[checkoutID]
	p.completed = true
	if p.amount.Mod(decimal.NewFromInt(10)).Equal(decimal.NewFromInt(1)) {
		p.resultCode, p.resultDesc = resultCancelled, "Request cancelled by user"
	} else {
		p.resultCode, p.resultDesc = resultSuccess, "The service request is processed successfully."
	}
	body := d.callbackBody(checkoutID, p)
	d.mu.Unlock()

	if callbackURL == "" {
		return
	}
	if err := d.sender.Send(ctx, callbackURL, body); err != nil {
		log.Printf("Error sending callback for %s: %v", checkoutID, err)
	}
}

func (d *Daraja) callbackBody(checkoutID string, p *payment) []byte {
	callback := map[string]any{
		"MerchantRequestID": p.merchantRequestID,
		"CheckoutRequestID": checkoutID,
		"ResultCode":        p.resultCode,
		"ResultDesc":        p.resultDesc,
	}
	if p.resultCode == resultSuccess {
		phone, _ := decimal.NewFromString(p.phone)
		callback["CallbackMetadata"] = map[string]any{
			"Item": []map[string]any{
				{"Name": "Amount", "Value": json.Number(p.amount.String())},
				{"Name": "MpesaReceiptNumber", "Value": receiptNumber()},
				{"Name": "Balance"},
				{"Name": "TransactionDate", "Value": json.Number(d.now().Format("20060102150405"))},
				{"Name": "PhoneNumber", "Value": json.Number(phone.String())},
			},
		}
	}

	body, _ := json.Marshal(map[string]any{"Body": map[string]any{"stkCallback": callback}})
	return body
}

func receiptNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (d *Daraja) stkQueryHandler(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "404.001.03", "Invalid Access Token")
		return
	}

	var req stkQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "400.002.02", "Bad Request - Invalid Body")
		return
	}

	d.mu.Lock()
	p, ok := d.payments[req.CheckoutRequestID]
	var snapshot payment
	if ok {
		snapshot = *p
	}
	d.mu.Unlock()

	switch {
	case !ok:
		writeError(w, http.StatusBadRequest, "400.002.02", "Bad Request - Invalid CheckoutRequestID")
	case !snapshot.completed:
		writeError(w, http.StatusInternalServerError, "500.001.1001", "The transaction is being processed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"ResponseCode":        "0",
			"ResponseDescription": "The service request has been accepted successsfully",
			"MerchantRequestID":   snapshot.merchantRequestID,
			"CheckoutRequestID":   req.CheckoutRequestID,
			"ResultCode":          fmt.Sprint(snapshot.resultCode),
			"ResultDesc":          snapshot.resultDesc,
		})
	}
}
