package easypay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	headerAccountID = "AccountId"
	headerAPIKey    = "ApiKey"

	// responses larger than this are truncated before decoding
	maxResponseBytes = 1 << 20
)

// Gateway is the subset of the Easypay single payment API used by this service.
type Gateway interface {
	CreatePayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) (bool, error)
}

type ClientOptions struct {
	BackendURL string
	AccountID  string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Easypay API 2.0 over HTTP. It holds no per-call state.
type Client struct {
	backendURL string
	accountID  string
	apiKey     string
	httpClient *http.Client
	validate   *validator.Validate
}

func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		return nil, errors.New("opts is nil")
	}
	base := strings.TrimRight(opts.BackendURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", opts.BackendURL, err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		backendURL: base,
		accountID:  opts.AccountID,
		apiKey:     opts.APIKey,
		httpClient: hc,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (c *Client) checkAuthParams() error {
	if c.accountID == "" {
		return invalidArgument("easypay account id is not configured")
	}
	if c.apiKey == "" {
		return invalidArgument("easypay api key is not configured")
	}
	return nil
}

// ValidatePaymentRequest checks a request without sending it.
func (c *Client) ValidatePaymentRequest(req *PaymentRequest) error {
	if req == nil {
		return invalidArgument("payment request is nil")
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return invalidArgument("value must be a number")
	}
	if !req.Method.Valid() {
		return invalidArgument("method must be one of %v", MethodTypes())
	}
	if !req.Type.Valid() {
		return invalidArgument("type must be one of [%s %s]", PaymentTypeSale, PaymentTypeAuthorisation)
	}
	if req.Currency != CurrencyEUR && req.Currency != CurrencyBRL {
		return invalidArgument("currency must be one of [%s %s]", CurrencyEUR, CurrencyBRL)
	}
	if err := c.validate.Struct(req); err != nil {
		return invalidArgument("%v", err)
	}
	return nil
}

func (c *Client) CreatePayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	if err := c.checkAuthParams(); err != nil {
		return nil, err
	}
	if req != nil {
		if req.Type == "" {
			req.Type = PaymentTypeSale
		}
		if req.Currency == "" {
			req.Currency = CurrencyEUR
		}
	}
	if err := c.ValidatePaymentRequest(req); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	var res PaymentResponse
	if err := c.do(ctx, http.MethodPost, c.backendURL+"/single", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	if err := c.checkAuthParams(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("id must be a non-empty UUID string")
	}

	var res PaymentResponse
	if err := c.do(ctx, http.MethodGet, c.singleURL(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeletePayment cancels a single payment. A refusal by the gateway is
// reported as false without an error; errors are reserved for invalid input
// and transport failures.
func (c *Client) DeletePayment(ctx context.Context, id string) (bool, error) {
	if err := c.checkAuthParams(); err != nil {
		return false, err
	}
	if strings.TrimSpace(id) == "" {
		return false, invalidArgument("id must be a non-empty UUID string")
	}

	err := c.do(ctx, http.MethodDelete, c.singleURL(id), nil, nil)
	if err == nil {
		return true, nil
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return false, nil
	}
	return false, err
}

func (c *Client) singleURL(id string) string {
	return c.backendURL + "/single/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("easypay %s request: %w", method, err)
	}
	httpReq.Header.Set(headerAccountID, c.accountID)
	httpReq.Header.Set(headerAPIKey, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("easypay %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("easypay read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewGatewayError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("easypay decode response: %w body=%s", err, string(raw))
	}
	return nil
}
