package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
)

func newPaystackTestServer(t *testing.T, handler http.HandlerFunc) *PaystackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPaystackClient(PaystackConfig{
		SecretKey:        "sk_test_secret",
		BaseURL:          srv.URL,
		SettlementBank:   "058",
		AccountNumber:    "0123456789",
		PercentageCharge: 0.2,
		Currency:         "NGN",
		Timeout:          2 * time.Second,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestPaystack_CreateSubaccount(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subaccount", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada business", body["business_name"])
		assert.Equal(t, "058", body["settlement_bank"])
		assert.Equal(t, "0123456789", body["account_number"])

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"status":  true,
			"message": "Subaccount created",
			"data":    map[string]interface{}{"id": 55, "subaccount_code": "ACCT_abc"},
		})
	})

	sub, err := client.CreateSubaccount(context.Background(), "Ada business")
	require.NoError(t, err)
	assert.Equal(t, "ACCT_abc", sub.Address)
	assert.Equal(t, "55", sub.ExternalID)
}

func TestPaystack_CreateSubaccount_Rejected(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Account number is invalid"})
	})

	_, err := client.CreateSubaccount(context.Background(), "Ada business")
	require.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
	assert.Equal(t, domainerrors.CodeUpstreamUnavailable, domainerrors.FromError(err).Code)
}

func TestPaystack_InitializeTransaction(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "6000", body["amount"])
		assert.Equal(t, "ACCT_abc", body["subaccount"])
		assert.Equal(t, "NGN", body["currency"])

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/xyz",
				"access_code":       "xyz",
				"reference":         "ref-1",
			},
		})
	})

	init, err := client.InitializeTransaction(context.Background(), entities.TransactionRequest{
		Email:       "ada@pharmapool.test",
		AmountMinor: 6000,
		Subaccount:  "ACCT_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", init.Reference)
	assert.Equal(t, "xyz", init.AccessCode)
	assert.Equal(t, "https://checkout.paystack.com/xyz", init.AuthorizationURL)
}

func TestPaystack_VerifyTransaction(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"reference": "ref-1", "status": "success", "amount": 6000},
		})
	})

	v, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, entities.GatewayStatusSuccess, v.Status)
	assert.Equal(t, int64(6000), v.AmountMinor)
}

func TestPaystack_VerifyTransaction_ServerErrorIsRetryable(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream hiccup")
	})

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.ErrorIs(t, err, domainerrors.ErrRetryable)
}

func TestPaystack_VerifyTransaction_TimeoutIsRetryable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewPaystackClient(PaystackConfig{SecretKey: "sk", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.ErrorIs(t, err, domainerrors.ErrRetryable)
}

func TestPaystack_VerifyTransaction_UnknownReference(t *testing.T) {
	client := newPaystackTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Transaction reference not found"})
	})

	_, err := client.VerifyTransaction(context.Background(), "nope")
	require.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
}

func TestPaystack_VerifyWebhookSignature(t *testing.T) {
	client := NewPaystackClient(PaystackConfig{SecretKey: "sk_test_secret"})
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(body, sig))
	assert.False(t, client.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature(body, ""))
	assert.False(t, client.VerifyWebhookSignature([]byte(`{"tampered":true}`), sig))
}

func TestParseWebhookEvent(t *testing.T) {
	ev, err := ParseWebhookEvent([]byte(`{"event":"charge.success","data":{"reference":"ref-1","status":"success","subaccount":{"subaccount_code":"ACCT_abc"}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventChargeSuccess, ev.Event)
	assert.Equal(t, "ref-1", ev.Reference)
	assert.Equal(t, "ACCT_abc", ev.WalletAddress)

	_, err = ParseWebhookEvent([]byte(`not json`))
	require.Error(t, err)
	_, err = ParseWebhookEvent([]byte(`{"event":"charge.success","data":{}}`))
	require.Error(t, err)
}
