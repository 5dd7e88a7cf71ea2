package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPSCallbackSenderSignsPayload(t *testing.T) {
	var (
		body      []byte
		signature string
		requestID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		signature = r.Header.Get(SignatureHeader)
		requestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender, err := NewHTTPSCallbackSender(srv.URL, "s3cret", nil)
	require.NoError(t, err)

	payload := ReceiptResponse{Action: ActionCreate, Status: "succeeded", Token: "abc", RequestID: "req-1"}
	require.NoError(t, sender.Send(context.Background(), payload))

	require.True(t, VerifySignature(body, signature, "s3cret"))
	require.False(t, VerifySignature(body, signature, "other"))
	require.Equal(t, "req-1", requestID)

	var got ReceiptResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, payload, got)
}

func TestHTTPSCallbackSenderUnsignedWithoutSecret(t *testing.T) {
	var signature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get(SignatureHeader)
	}))
	defer srv.Close()

	sender, err := NewHTTPSCallbackSender(srv.URL, "", nil)
	require.NoError(t, err)
	require.NoError(t, sender.Send(context.Background(), ReceiptResponse{Action: ActionGet}))
	require.Empty(t, signature)
}

func TestHTTPSCallbackSenderReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender, err := NewHTTPSCallbackSender(srv.URL, "", nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), ReceiptResponse{Action: ActionGet})
	require.EqualError(t, err, "callback endpoint returned 502: nope")
}

func TestNewHTTPSCallbackSenderRequiresURL(t *testing.T) {
	_, err := NewHTTPSCallbackSender("  ", "", nil)
	require.EqualError(t, err, "callback URL is required")
}
