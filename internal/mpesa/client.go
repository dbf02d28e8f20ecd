package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
)

const (
	tokenPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath = "/mpesa/stkpushquery/v1/query"

	defaultTimeout = 30 * time.Second
)

// Client talks to the Daraja STK Push API. It holds no state between calls:
// every operation fetches a fresh access token.
type Client struct {
	cfg    Config
	http   *http.Client
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: defaultTimeout},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken fetches a bearer token using the consumer key and secret.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", errors.Wrap(err, "create token request")
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	var body tokenResponse
	if err := c.do(req, &body); err != nil {
		requestCounter("token", "error").Inc()
		return "", &TokenError{Err: err}
	}
	if body.AccessToken == "" {
		requestCounter("token", "error").Inc()
		return "", &TokenError{Err: errors.New("empty access_token")}
	}

	requestCounter("token", "success").Inc()
	return body.AccessToken, nil
}

// postJSON sends payload to path with a freshly fetched bearer token.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newProviderError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode response from %s", req.URL.Path)
	}
	return nil
}

// sign returns the timestamp and password for a request made now.
func (c *Client) sign() (timestamp, password string) {
	timestamp = Timestamp(c.now())
	return timestamp, Password(c.cfg.ShortCode, c.cfg.Passkey, timestamp)
}

func requestCounter(operation, result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`mpesa_requests_total{operation=%q,result=%q}`, operation, result))
}
