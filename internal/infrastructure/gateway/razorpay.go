package gateway

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/pkg/metrics"
)

const ProviderRazorpay = "razorpay"

// RazorpayConfig holds API credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayCustomers interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayClient maps the escrow gateway contract onto Razorpay orders.
// A customer record stands in for the wallet subaccount and the order id
// is the pledge reference.
type RazorpayClient struct {
	orders    razorpayOrders
	customers razorpayCustomers
	currency  string
	timeout   time.Duration
}

// NewRazorpayClient creates a Razorpay adapter
func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return newRazorpayClient(client.Order, client.Customer, cfg)
}

func newRazorpayClient(orders razorpayOrders, customers razorpayCustomers, cfg RazorpayConfig) *RazorpayClient {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayClient{
		orders:    orders,
		customers: customers,
		currency:  currency,
		timeout:   timeout,
	}
}

// Name returns the provider name
func (c *RazorpayClient) Name() string {
	return ProviderRazorpay
}

// CreateSubaccount creates the customer that collects a wallet's orders
func (c *RazorpayClient) CreateSubaccount(ctx context.Context, businessName string) (*entities.Subaccount, error) {
	res, err := c.call(ctx, func() (map[string]interface{}, error) {
		return c.customers.Create(map[string]interface{}{
			"name":          businessName,
			"fail_existing": "0",
		}, nil)
	})
	metrics.ObserveGatewayCall(ProviderRazorpay, "create_subaccount", outcomeOf(err))
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable("failed to create gateway subaccount", err)
	}

	id := stringField(res, "id")
	if id == "" {
		return nil, domainerrors.UpstreamUnavailable("gateway returned no customer id", nil)
	}
	return &entities.Subaccount{Address: id, ExternalID: id}, nil
}

// InitializeTransaction creates an order tagged with the wallet address
func (c *RazorpayClient) InitializeTransaction(ctx context.Context, req entities.TransactionRequest) (*entities.TransactionInit, error) {
	res, err := c.call(ctx, func() (map[string]interface{}, error) {
		return c.orders.Create(map[string]interface{}{
			"amount":          req.AmountMinor,
			"currency":        c.currency,
			"receipt":         fmt.Sprintf("pledge_%d", time.Now().UnixNano()),
			"payment_capture": 1,
			"notes": map[string]interface{}{
				"wallet_address": req.Subaccount,
				"email":          req.Email,
			},
		}, nil)
	})
	metrics.ObserveGatewayCall(ProviderRazorpay, "initialize", outcomeOf(err))
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable("failed to initialize gateway transaction", err)
	}

	id := stringField(res, "id")
	if id == "" {
		return nil, domainerrors.UpstreamUnavailable("gateway returned no order id", nil)
	}
	return &entities.TransactionInit{Reference: id, AccessCode: id}, nil
}

// VerifyTransaction fetches the order. Razorpay orders have no declined
// state, so anything short of paid stays pending.
func (c *RazorpayClient) VerifyTransaction(ctx context.Context, reference string) (*entities.TransactionVerification, error) {
	res, err := c.call(ctx, func() (map[string]interface{}, error) {
		return c.orders.Fetch(reference, nil, nil)
	})
	metrics.ObserveGatewayCall(ProviderRazorpay, "verify", outcomeOf(err))
	if err != nil {
		return nil, domainerrors.Retryable("payment status unknown, retry verification later", err)
	}

	status := entities.GatewayStatusPending
	switch stringField(res, "status") {
	case "paid":
		status = entities.GatewayStatusSuccess
	case "attempted":
		status = entities.GatewayStatusProcessing
	}
	return &entities.TransactionVerification{
		Reference:   reference,
		Status:      status,
		AmountMinor: int64Field(res, "amount_paid"),
	}, nil
}

// call bounds a blocking SDK call by the adapter timeout and ctx
func (c *RazorpayClient) call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		res map[string]interface{}
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := fn()
		done <- result{res: res, err: err}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func int64Field(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
