package receeco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production tRPC endpoint.
	DefaultBaseURL = "https://receeco.com/api/trpc"
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 30 * time.Second

	defaultCurrency = "NGN"
	statusCompleted = "completed"

	// DefaultMaxResponseBytes caps how much of a response body is read.
	DefaultMaxResponseBytes = 4 << 20

	// ISO-8601 in UTC with millisecond precision.
	transactionDateLayout = "2006-01-02T15:04:05.000Z07:00"
)

const (
	opCreateReceipt = "createReceiptFromPOS"
	opGetReceipt    = "getReceipt"
	opUpdateContact = "updateReceiptContact"
)

// Config holds the settings fixed at construction.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Client talks to the Receeco receipt API. It is immutable after New and
// safe for concurrent use as long as the underlying *http.Client is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
	now        func() time.Time
	maxBody    int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the default transport. The caller's client keeps
// its own timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger enables debug logging of requests and responses.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMaxResponseBytes overrides the response size cap. Larger bodies fail
// with REQUEST_FAILED.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New validates cfg and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, newError(CodeAPIKeyRequired, "API key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     zerolog.Nop(),
		now:        time.Now,
		maxBody:    DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the endpoint the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateReceipt validates in, labels it with a fresh token and short code
// and submits it. Validation failures return before any request is made.
func (c *Client) CreateReceipt(ctx context.Context, in ReceiptInput) (*CreatedReceipt, error) {
	if err := ValidateCreateReceiptInput(in); err != nil {
		return nil, err
	}

	token, err := GenerateReceiptToken()
	if err != nil {
		return nil, wrapError(CodeIDGenerationFailed, err)
	}
	shortCode, err := GenerateShortCode()
	if err != nil {
		return nil, wrapError(CodeIDGenerationFailed, err)
	}

	if in.TransactionDate == "" {
		in.TransactionDate = c.now().UTC().Format(transactionDateLayout)
	}
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}

	payload := createReceiptPayload{
		ReceiptInput: in,
		Token:        token,
		ShortCode:    shortCode,
		Status:       statusCompleted,
	}

	result, err := c.do(ctx, http.MethodPost, opCreateReceipt, nil, payload)
	if err != nil {
		return nil, err
	}

	var created CreatedReceipt
	c.decodeResult(result, &created)
	created.Raw = result
	return &created, nil
}

// GetReceipt fetches a receipt by token or short code.
func (c *Client) GetReceipt(ctx context.Context, tokenOrCode string) (*Receipt, error) {
	tokenOrCode = strings.TrimSpace(tokenOrCode)
	if tokenOrCode == "" {
		return nil, newError(CodeInvalidInput, "token is required")
	}

	input, err := json.Marshal(map[string]string{"token": tokenOrCode})
	if err != nil {
		return nil, wrapError(CodeInvalidInput, err)
	}
	query := url.Values{"input": {string(input)}}

	result, err := c.do(ctx, http.MethodGet, opGetReceipt, query, nil)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	c.decodeResult(result, &receipt)
	receipt.Raw = result
	return &receipt, nil
}

// UpdateReceiptContact attaches an email and/or phone number to a receipt.
func (c *Client) UpdateReceiptContact(ctx context.Context, in ContactUpdateInput) (*ContactUpdateResult, error) {
	if strings.TrimSpace(in.Token) == "" {
		return nil, newError(CodeInvalidInput, "token is required")
	}

	result, err := c.do(ctx, http.MethodPost, opUpdateContact, nil, in)
	if err != nil {
		return nil, err
	}

	var updated ContactUpdateResult
	c.decodeResult(result, &updated)
	updated.Raw = result
	return &updated, nil
}

// do performs exactly one round trip and normalizes the response.
func (c *Client) do(ctx context.Context, method, operation string, query url.Values, payload any) (json.RawMessage, error) {
	var body io.Reader
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, wrapError(CodeInvalidInput, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + "/" + operation
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, wrapError(CodeRequestFailed, err)
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug().
		Str("operation", operation).
		Str("method", method).
		Str("request_id", requestID).
		Int("request_bytes", len(encoded)).
		Msg("receeco request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("operation", operation).Msg("receeco request failed")
		return nil, wrapError(CodeRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, wrapError(CodeRequestFailed, fmt.Errorf("read response: %w", err))
	}
	if int64(len(data)) > c.maxBody {
		return nil, newError(CodeRequestFailed, fmt.Sprintf("response body exceeds %d bytes", c.maxBody))
	}

	c.logger.Debug().
		Str("operation", operation).
		Str("request_id", requestID).
		Int("status_code", resp.StatusCode).
		Int("response_bytes", len(data)).
		Msg("receeco response")

	if resp.StatusCode != http.StatusOK && !json.Valid(data) {
		return nil, newError(CodeRequestFailed, fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}

	return Normalize(resp.StatusCode, data)
}

// decodeResult fills the typed fields of v from a normalized result on a
// best-effort basis. The server already accepted the call, so a result that
// does not fit the struct is not an error; callers still get it via Raw.
func (c *Client) decodeResult(result json.RawMessage, v any) {
	if err := json.Unmarshal(result, v); err != nil {
		c.logger.Debug().Err(err).Msg("receeco result does not match expected shape")
	}
}

type requestIDKey struct{}

// WithRequestID returns a context whose requests carry id in X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
