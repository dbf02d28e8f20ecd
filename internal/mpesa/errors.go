package mpesa

import (
	"encoding/json"
	"fmt"
)

const (
	initiateFailedMessage = "Failed to initiate M-Pesa payment"
	statusFailedMessage   = "Failed to check transaction status"
	callbackFailedMessage = "Failed to process callback"
)

// ProviderError is a non-2xx answer from Daraja, or a 2xx answer whose
// ResponseCode is not zero.
type ProviderError struct {
	StatusCode int
	RequestID  string
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mpesa: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("mpesa: status %d: %s", e.StatusCode, e.Message)
}

// TokenError means the OAuth step failed before the actual request was made.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return "mpesa: generate access token: " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func newProviderError(status int, body []byte) *ProviderError {
	perr := &ProviderError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		perr.RequestID = eb.RequestID
		perr.Code = eb.ErrorCode
		perr.Message = eb.ErrorMessage
	}
	return perr
}
