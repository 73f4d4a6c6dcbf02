package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/pkg/metrics"
)

const (
	ProviderPaystack = "paystack"

	defaultPaystackBaseURL = "https://api.paystack.co"
)

// PaystackConfig holds the credentials and settlement details used when
// creating subaccounts.
type PaystackConfig struct {
	SecretKey        string
	BaseURL          string
	SettlementBank   string
	AccountNumber    string
	PercentageCharge float64
	Currency         string
	Timeout          time.Duration
}

// PaystackClient talks to the Paystack REST API
type PaystackClient struct {
	cfg        PaystackConfig
	baseURL    string
	httpClient *http.Client
}

// NewPaystackClient creates a Paystack adapter
func NewPaystackClient(cfg PaystackConfig) *PaystackClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultPaystackBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackClient{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (c *PaystackClient) Name() string {
	return ProviderPaystack
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiError is a non-2xx answer from the gateway
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Message)
}

// CreateSubaccount registers a settlement subaccount for a wallet
func (c *PaystackClient) CreateSubaccount(ctx context.Context, businessName string) (*entities.Subaccount, error) {
	body := map[string]interface{}{
		"business_name":     businessName,
		"settlement_bank":   c.cfg.SettlementBank,
		"account_number":    c.cfg.AccountNumber,
		"percentage_charge": c.cfg.PercentageCharge,
	}

	var data struct {
		ID             int64  `json:"id"`
		SubaccountCode string `json:"subaccount_code"`
	}
	if err := c.do(ctx, http.MethodPost, "/subaccount", body, &data); err != nil {
		metrics.ObserveGatewayCall(ProviderPaystack, "create_subaccount", outcomeOf(err))
		return nil, domainerrors.UpstreamUnavailable("failed to create gateway subaccount", err)
	}
	metrics.ObserveGatewayCall(ProviderPaystack, "create_subaccount", "ok")

	if data.SubaccountCode == "" {
		return nil, domainerrors.UpstreamUnavailable("gateway returned no subaccount code", nil)
	}
	return &entities.Subaccount{
		Address:    data.SubaccountCode,
		ExternalID: strconv.FormatInt(data.ID, 10),
	}, nil
}

// InitializeTransaction opens a checkout split to the wallet subaccount
func (c *PaystackClient) InitializeTransaction(ctx context.Context, req entities.TransactionRequest) (*entities.TransactionInit, error) {
	body := map[string]interface{}{
		"email":      req.Email,
		"amount":     strconv.FormatInt(req.AmountMinor, 10),
		"subaccount": req.Subaccount,
	}
	if c.cfg.Currency != "" {
		body["currency"] = c.cfg.Currency
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		metrics.ObserveGatewayCall(ProviderPaystack, "initialize", outcomeOf(err))
		return nil, domainerrors.UpstreamUnavailable("failed to initialize gateway transaction", err)
	}
	metrics.ObserveGatewayCall(ProviderPaystack, "initialize", "ok")

	if data.Reference == "" {
		return nil, domainerrors.UpstreamUnavailable("gateway returned no transaction reference", nil)
	}
	return &entities.TransactionInit{
		Reference:        data.Reference,
		AccessCode:       data.AccessCode,
		AuthorizationURL: data.AuthorizationURL,
	}, nil
}

// VerifyTransaction fetches the authoritative transaction status.
// Transport failures and 5xx answers are retryable because the payment
// outcome is unknown.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*entities.TransactionVerification, error) {
	var data struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	}
	err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data)
	metrics.ObserveGatewayCall(ProviderPaystack, "verify", outcomeOf(err))
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, domainerrors.UpstreamUnavailable("gateway rejected verification", err)
		}
		return nil, domainerrors.Retryable("payment status unknown, retry verification later", err)
	}

	if data.Reference == "" {
		data.Reference = reference
	}
	return &entities.TransactionVerification{
		Reference:   data.Reference,
		Status:      entities.GatewayStatus(strings.ToLower(data.Status)),
		AmountMinor: data.Amount,
	}, nil
}

// VerifyWebhookSignature checks the X-Paystack-Signature header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func (c *PaystackClient) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" || c.cfg.SecretKey == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (c *PaystackClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var env paystackEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}

	if resp.StatusCode >= 300 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		code := resp.StatusCode
		if code < 300 {
			code = http.StatusBadGateway
		}
		return &apiError{StatusCode: code, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode gateway data: %w", err)
		}
	}
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return "server_error"
		}
		return "rejected"
	}
	return "transport_error"
}
