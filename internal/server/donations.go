package server

import (
	"io"
	"net/http"
	"time"

	"donation-service/internal/metrics"
	"donation-service/internal/mpesa"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type initiatePaymentRequest struct {
	PhoneNumber      string          `json:"phoneNumber"`
	Amount           decimal.Decimal `json:"amount"`
	AccountReference string          `json:"accountReference"`
	TransactionDesc  string          `json:"transactionDesc"`
}

type checkStatusRequest struct {
	CheckoutRequestID string `json:"checkoutRequestID"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (h *handlers) initiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.Amount.IsZero() {
		fail(c, http.StatusBadRequest, "Phone number and amount are required")
		return
	}

	if req.AccountReference == "" {
		req.AccountReference = h.Mpesa.AccountReference
	}
	if req.TransactionDesc == "" {
		req.TransactionDesc = h.Mpesa.TransactionDesc
	}

	defer metrics.Since(`mpesa_gateway_duration_ms{operation="stkpush"}`, time.Now())
	result := h.Gateway.InitiateSTKPush(c.Request.Context(), mpesa.PaymentRequest{
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: req.AccountReference,
		TransactionDesc:  req.TransactionDesc,
	})
	if !result.Success {
		fail(c, http.StatusBadRequest, result.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment initiated successfully",
		"data":    result,
	})
}

func (h *handlers) checkPaymentStatus(c *gin.Context) {
	var req checkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CheckoutRequestID == "" {
		fail(c, http.StatusBadRequest, "Checkout request ID is required")
		return
	}

	defer metrics.Since(`mpesa_gateway_duration_ms{operation="stkquery"}`, time.Now())
	result := h.Gateway.QueryStatus(c.Request.Context(), req.CheckoutRequestID)
	if !result.Success {
		fail(c, http.StatusBadRequest, result.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// maxCallbackBytes caps the webhook body; real STK callbacks are under 2 KiB.
const maxCallbackBytes = 64 << 10

// mpesaCallback always answers 200; Daraja only reads the ResultCode.
func (h *handlers) mpesaCallback(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBytes))
	if err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "Error reading callback body", "error", err)
		c.JSON(http.StatusOK, mpesa.CallbackOutcome{Error: "Failed to process callback"}.Ack())
		return
	}

	outcome := h.Callbacks.Handle(c.Request.Context(), payload)
	c.JSON(http.StatusOK, outcome.Ack())
}
