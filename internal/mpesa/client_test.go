package mpesa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL   = "https://daraja.test"
	testTimestamp = "20240115103045"
	basicAuth     = "Basic a2V5OnNlY3JldA=="
)

func testConfig() Config {
	return Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.org/api/mpesa/callback",
		BaseURL:        testBaseURL,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	fixed := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	client, err := NewClient(testConfig(), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return client
}

func mockToken() {
	gock.New(testBaseURL).
		Get("/oauth/v1/generate").
		MatchParam("grant_type", "client_credentials").
		MatchHeader("Authorization", basicAuth).
		Reply(200).
		JSON(map[string]string{"access_token": "token-1", "expires_in": "3599"})
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{ConsumerKey: "key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConsumerSecret")
	assert.Contains(t, err.Error(), "ShortCode")
	assert.Contains(t, err.Error(), "Passkey")
	assert.Contains(t, err.Error(), "CallbackURL")
	assert.NotContains(t, err.Error(), "BaseURL", "base url falls back to the sandbox")

	cfg := testConfig()
	cfg.BaseURL = ""
	client, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.cfg.BaseURL)
}

func TestClient_AccessToken(t *testing.T) {
	tests := []struct {
		name          string
		mockResponse  func()
		expectedToken string
		expectedError bool
	}{
		{
			name:          "Success",
			mockResponse:  mockToken,
			expectedToken: "token-1",
		},
		{
			name: "Unauthorized",
			mockResponse: func() {
				gock.New(testBaseURL).
					Get("/oauth/v1/generate").
					Reply(401).
					JSON(map[string]string{"errorMessage": "Invalid Credentials"})
			},
			expectedError: true,
		},
		{
			name: "Empty token",
			mockResponse: func() {
				gock.New(testBaseURL).
					Get("/oauth/v1/generate").
					Reply(200).
					JSON(map[string]string{"expires_in": "3599"})
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.mockResponse()

			token, err := newTestClient(t).AccessToken(context.Background())
			if tt.expectedError {
				var terr *TokenError
				assert.ErrorAs(t, err, &terr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
			assert.True(t, gock.IsDone())
		})
	}
}

func TestClient_InitiateSTKPush(t *testing.T) {
	request := PaymentRequest{
		PhoneNumber:      "0712345678",
		Amount:           decimal.NewFromInt(500),
		AccountReference: "GREENMINDS",
		TransactionDesc:  "Donation to Green Minds Youth Initiative",
	}

	expectedBody := map[string]any{
		"BusinessShortCode": "174379",
		"Password":          Password("174379", "passkey", testTimestamp),
		"Timestamp":         testTimestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            500,
		"PartyA":            "254712345678",
		"PartyB":            "174379",
		"PhoneNumber":       "254712345678",
		"CallBackURL":       "https://example.org/api/mpesa/callback",
		"AccountReference":  "GREENMINDS",
		"TransactionDesc":   "Donation to Green Minds Youth Initiative",
	}

	tests := []struct {
		name         string
		request      PaymentRequest
		mockResponse func()
		expected     InitiateResult
	}{
		{
			name:    "Success",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					MatchHeader("Authorization", "Bearer token-1").
					JSON(expectedBody).
					Reply(200).
					JSON(map[string]string{
						"MerchantRequestID":   "29115-34620561-1",
						"CheckoutRequestID":   "ws_CO_191220191020363925",
						"ResponseCode":        "0",
						"ResponseDescription": "Success. Request accepted for processing",
						"CustomerMessage":     "Success. Request accepted for processing",
					})
			},
			expected: InitiateResult{
				Success:             true,
				MerchantRequestID:   "29115-34620561-1",
				CheckoutRequestID:   "ws_CO_191220191020363925",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
				CustomerMessage:     "Success. Request accepted for processing",
			},
		},
		{
			name:    "Provider error message",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					Reply(400).
					JSON(map[string]string{
						"requestId":    "1234-5678",
						"errorCode":    "400.002.02",
						"errorMessage": "Bad Request - Invalid PhoneNumber",
					})
			},
			expected: InitiateResult{Success: false, Error: "Bad Request - Invalid PhoneNumber"},
		},
		{
			name:    "Provider error without message",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					Reply(500).
					BodyString("upstream unavailable")
			},
			expected: InitiateResult{Success: false, Error: "Failed to initiate M-Pesa payment"},
		},
		{
			name:    "Non-zero response code",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					Reply(200).
					JSON(map[string]string{
						"ResponseCode":        "1",
						"ResponseDescription": "Rejected",
					})
			},
			expected: InitiateResult{Success: false, Error: "Rejected"},
		},
		{
			name:    "Connection error",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					ReplyError(errors.New("connection reset"))
			},
			expected: InitiateResult{Success: false, Error: "Failed to initiate M-Pesa payment"},
		},
		{
			name:    "Malformed response body",
			request: request,
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					Reply(200).
					BodyString("<html>gateway timeout</html>")
			},
			expected: InitiateResult{Success: false, Error: "Failed to initiate M-Pesa payment"},
		},
		{
			name:    "Token failure",
			request: request,
			mockResponse: func() {
				gock.New(testBaseURL).
					Get("/oauth/v1/generate").
					Reply(401).
					JSON(map[string]string{"errorMessage": "Invalid Credentials"})
			},
			expected: InitiateResult{Success: false, Error: "Failed to initiate M-Pesa payment"},
		},
		{
			name: "Invalid phone",
			request: PaymentRequest{
				PhoneNumber: "12345",
				Amount:      decimal.NewFromInt(10),
			},
			mockResponse: func() {},
			expected:     InitiateResult{Success: false, Error: "Invalid phone number"},
		},
		{
			name: "Zero amount",
			request: PaymentRequest{
				PhoneNumber: "254712345678",
				Amount:      decimal.Zero,
			},
			mockResponse: func() {},
			expected:     InitiateResult{Success: false, Error: "Amount must be a positive number"},
		},
		{
			name: "Fractional cents",
			request: PaymentRequest{
				PhoneNumber: "254712345678",
				Amount:      decimal.RequireFromString("10.005"),
			},
			mockResponse: func() {},
			expected:     InitiateResult{Success: false, Error: "Amount cannot have more than two decimal places"},
		},
		{
			name:    "Trailing zeros are whole cents",
			request: PaymentRequest{
				PhoneNumber: "254712345678",
				Amount:      decimal.RequireFromString("10.500"),
			},
			mockResponse: func() {
				mockToken()
				gock.New(testBaseURL).
					Post("/mpesa/stkpush/v1/processrequest").
					Reply(200).
					JSON(map[string]string{"CheckoutRequestID": "ws_CO_2", "ResponseCode": "0"})
			},
			expected: InitiateResult{Success: true, CheckoutRequestID: "ws_CO_2", ResponseCode: "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.mockResponse()

			result := newTestClient(t).InitiateSTKPush(context.Background(), tt.request)

			assert.Equal(t, tt.expected, result)
			assert.True(t, gock.IsDone())
		})
	}
}

func TestClient_QueryStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		defer gock.Off()
		mockToken()
		gock.New(testBaseURL).
			Post("/mpesa/stkpushquery/v1/query").
			MatchHeader("Authorization", "Bearer token-1").
			JSON(map[string]string{
				"BusinessShortCode": "174379",
				"Password":          Password("174379", "passkey", testTimestamp),
				"Timestamp":         testTimestamp,
				"CheckoutRequestID": "ws_CO_1",
			}).
			Reply(200).
			JSON(map[string]string{
				"ResponseCode":        "0",
				"ResponseDescription": "The service request has been accepted successsfully",
				"MerchantRequestID":   "22205-34066-1",
				"CheckoutRequestID":   "ws_CO_1",
				"ResultCode":          "1032",
				"ResultDesc":          "Request cancelled by user",
			})

		result := newTestClient(t).QueryStatus(context.Background(), "ws_CO_1")

		assert.True(t, result.Success)
		assert.Equal(t, "1032", result.ResultCode)
		assert.Equal(t, "Request cancelled by user", result.ResultDesc)
		assert.False(t, result.Paid())
		assert.Contains(t, string(result.TransactionData), `"MerchantRequestID":"22205-34066-1"`)
		assert.True(t, gock.IsDone())
	})

	t.Run("Numeric result code", func(t *testing.T) {
		defer gock.Off()
		mockToken()
		gock.New(testBaseURL).
			Post("/mpesa/stkpushquery/v1/query").
			Reply(200).
			JSON(map[string]any{"ResponseCode": "0", "ResultCode": 0, "ResultDesc": "The service request is processed successfully."})

		result := newTestClient(t).QueryStatus(context.Background(), "ws_CO_1")

		assert.True(t, result.Paid())
		assert.Equal(t, "0", result.ResultCode)
	})

	t.Run("Provider error", func(t *testing.T) {
		defer gock.Off()
		mockToken()
		gock.New(testBaseURL).
			Post("/mpesa/stkpushquery/v1/query").
			Reply(500).
			JSON(map[string]string{"errorCode": "500.001.1001", "errorMessage": "The transaction is being processed"})

		result := newTestClient(t).QueryStatus(context.Background(), "ws_CO_1")

		assert.Equal(t, StatusResult{Success: false, Error: "Failed to check transaction status"}, result)
		assert.True(t, gock.IsDone())
	})

	t.Run("Connection error", func(t *testing.T) {
		defer gock.Off()
		mockToken()
		gock.New(testBaseURL).
			Post("/mpesa/stkpushquery/v1/query").
			ReplyError(errors.New("connection reset"))

		result := newTestClient(t).QueryStatus(context.Background(), "ws_CO_1")

		assert.Equal(t, StatusResult{Success: false, Error: "Failed to check transaction status"}, result)
		assert.True(t, gock.IsDone())
	})

	t.Run("Malformed response body", func(t *testing.T) {
		defer gock.Off()
		mockToken()
		gock.New(testBaseURL).
			Post("/mpesa/stkpushquery/v1/query").
			Reply(200).
			BodyString("<html>gateway timeout</html>")

		result := newTestClient(t).QueryStatus(context.Background(), "ws_CO_1")

		assert.Equal(t, StatusResult{Success: false, Error: "Failed to check transaction status"}, result)
		assert.True(t, gock.IsDone())
	})

	t.Run("Empty id", func(t *testing.T) {
		result := newTestClient(t).QueryStatus(context.Background(), "")
		assert.False(t, result.Success)
		assert.Equal(t, "Failed to check transaction status", result.Error)
	})
}
