package gateway

import (
	"context"
	"fmt"

	"pharmapool.backend/internal/domain/entities"
)

// Provider is the subset of a payment gateway the escrow engine drives
type Provider interface {
	Name() string
	CreateSubaccount(ctx context.Context, businessName string) (*entities.Subaccount, error)
	InitializeTransaction(ctx context.Context, req entities.TransactionRequest) (*entities.TransactionInit, error)
	VerifyTransaction(ctx context.Context, reference string) (*entities.TransactionVerification, error)
}

// Config selects and configures a provider
type Config struct {
	Provider string
	Paystack PaystackConfig
	Razorpay RazorpayConfig
}

// New builds the configured provider
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderPaystack:
		if cfg.Paystack.SecretKey == "" {
			return nil, fmt.Errorf("paystack secret key is not configured")
		}
		return NewPaystackClient(cfg.Paystack), nil
	case ProviderRazorpay:
		if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
			return nil, fmt.Errorf("razorpay credentials are not configured")
		}
		return NewRazorpayClient(cfg.Razorpay), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway provider %q", cfg.Provider)
	}
}
