package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultCallbackTimeout = 15 * time.Second

	// SignatureHeader carries the hex HMAC-SHA256 of the callback body.
	SignatureHeader = "X-Receipt-Signature"
)

// HTTPSCallbackSender posts receipt outcomes to an HTTPS endpoint.
type HTTPSCallbackSender struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewHTTPSCallbackSender builds an HTTPS callback client.
func NewHTTPSCallbackSender(url, secret string, client *http.Client) (*HTTPSCallbackSender, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("callback URL is required")
	}

	if client == nil {
		client = &http.Client{Timeout: defaultCallbackTimeout}
	}

	return &HTTPSCallbackSender{
		url:        url,
		secret:     secret,
		httpClient: client,
	}, nil
}

// Send transmits the receipt response as JSON to the configured endpoint,
// signing the body when a secret is configured.
func (h *HTTPSCallbackSender) Send(ctx context.Context, payload ReceiptResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if h.secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, h.secret))
	}
	if payload.RequestID != "" {
		req.Header.Set("X-Request-ID", payload.RequestID)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send callback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("callback endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload under secret.
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}
