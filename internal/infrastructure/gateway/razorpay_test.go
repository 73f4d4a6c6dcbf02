package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
)

type fakeOrders struct {
	created map[string]interface{}
	fetch   map[string]interface{}
	err     error
	delay   time.Duration
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.created = data
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"id": "order_123"}, nil
}

func (f *fakeOrders) Fetch(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.fetch, nil
}

type fakeCustomers struct {
	name string
}

func (f *fakeCustomers) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.name, _ = data["name"].(string)
	return map[string]interface{}{"id": "cust_9"}, nil
}

func TestRazorpay_SubaccountAndOrder(t *testing.T) {
	orders := &fakeOrders{}
	customers := &fakeCustomers{}
	client := newRazorpayClient(orders, customers, RazorpayConfig{})

	sub, err := client.CreateSubaccount(context.Background(), "Ward 4 business")
	require.NoError(t, err)
	assert.Equal(t, "cust_9", sub.Address)
	assert.Equal(t, "Ward 4 business", customers.name)

	init, err := client.InitializeTransaction(context.Background(), entities.TransactionRequest{AmountMinor: 2500, Subaccount: sub.Address})
	require.NoError(t, err)
	assert.Equal(t, "order_123", init.Reference)
	assert.Equal(t, int64(2500), orders.created["amount"])
	assert.Equal(t, "INR", orders.created["currency"])
}

func TestRazorpay_VerifyStatuses(t *testing.T) {
	cases := map[string]entities.GatewayStatus{
		"paid":      entities.GatewayStatusSuccess,
		"attempted": entities.GatewayStatusProcessing,
		"created":   entities.GatewayStatusPending,
	}
	for orderStatus, want := range cases {
		orders := &fakeOrders{fetch: map[string]interface{}{"status": orderStatus, "amount_paid": float64(2500)}}
		client := newRazorpayClient(orders, &fakeCustomers{}, RazorpayConfig{})

		v, err := client.VerifyTransaction(context.Background(), "order_123")
		require.NoError(t, err)
		assert.Equal(t, want, v.Status, orderStatus)
		assert.Equal(t, int64(2500), v.AmountMinor)
	}
}

func TestRazorpay_Errors(t *testing.T) {
	orders := &fakeOrders{err: errors.New("BAD_REQUEST_ERROR")}
	client := newRazorpayClient(orders, &fakeCustomers{}, RazorpayConfig{})

	_, err := client.InitializeTransaction(context.Background(), entities.TransactionRequest{AmountMinor: 100})
	require.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)

	_, err = client.VerifyTransaction(context.Background(), "order_123")
	require.ErrorIs(t, err, domainerrors.ErrRetryable)
}

func TestRazorpay_VerifyTimeout(t *testing.T) {
	orders := &fakeOrders{delay: 200 * time.Millisecond, fetch: map[string]interface{}{"status": "paid"}}
	client := newRazorpayClient(orders, &fakeCustomers{}, RazorpayConfig{Timeout: 20 * time.Millisecond})

	_, err := client.VerifyTransaction(context.Background(), "order_123")
	require.ErrorIs(t, err, domainerrors.ErrRetryable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
