package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Sender delivers STK callbacks to the URL given in the push request.
type Sender struct {
	client *http.Client
}

func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sender{client: &http.Client{Timeout: timeout}}
}

func (s *Sender) Send(ctx context.Context, url string, payload []byte) error {
	log.Printf("Sending callback to URL: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	log.Printf("Callback response %s: %s", resp.Status, respBody)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("error response: %s", resp.Status)
	}
	return nil
}
