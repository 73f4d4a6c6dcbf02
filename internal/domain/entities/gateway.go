package entities

import "github.com/shopspring/decimal"

// GatewayStatus is the transaction status reported by the payment gateway
type GatewayStatus string

const (
	GatewayStatusSuccess    GatewayStatus = "success"
	GatewayStatusFailed     GatewayStatus = "failed"
	GatewayStatusAbandoned  GatewayStatus = "abandoned"
	GatewayStatusReversed   GatewayStatus = "reversed"
	GatewayStatusPending    GatewayStatus = "pending"
	GatewayStatusOngoing    GatewayStatus = "ongoing"
	GatewayStatusProcessing GatewayStatus = "processing"
	GatewayStatusQueued     GatewayStatus = "queued"
)

// IsDeclined reports an explicit negative outcome. Only these statuses
// remove a pending pledge. Paystack reports abandoned for a checkout the
// payer has not finished yet, so it stays pending.
func (s GatewayStatus) IsDeclined() bool {
	switch s {
	case GatewayStatusFailed, GatewayStatusReversed:
		return true
	}
	return false
}

// Subaccount is the gateway account that receives a wallet's funds
type Subaccount struct {
	Address    string `json:"address"`
	ExternalID string `json:"externalId"`
}

// TransactionInit is the gateway response to a transaction initialization
type TransactionInit struct {
	Reference        string `json:"reference"`
	AccessCode       string `json:"accessCode"`
	AuthorizationURL string `json:"authorizationUrl,omitempty"`
}

// TransactionVerification is the gateway's view of a transaction
type TransactionVerification struct {
	Reference   string        `json:"reference"`
	Status      GatewayStatus `json:"status"`
	AmountMinor int64         `json:"amountMinor"`
}

// MinorUnits converts a major-unit amount to the gateway convention
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// MajorUnits converts a gateway minor-unit amount back to major units
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// TransactionRequest asks the gateway to open a checkout routed to a
// wallet's subaccount.
type TransactionRequest struct {
	Email       string
	AmountMinor int64
	Subaccount  string
}
