package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PledgeStatus represents the gateway confirmation state of a pledge
type PledgeStatus string

const (
	PledgeStatusPending  PledgeStatus = "pending"
	PledgeStatusVerified PledgeStatus = "verified"
)

// Supplier is the counterparty receiving the escrowed funds
type Supplier struct {
	UserID              uuid.UUID `json:"userId"`
	ReceiptAcknowledged bool      `json:"receiptAcknowledged"`
}

// Wallet is the escrow record tracking a funding goal for one conversation
type Wallet struct {
	ID               uuid.UUID           `json:"id"`
	WalletAddress    string              `json:"walletAddress"`
	ExternalWalletID string              `json:"externalWalletId"`
	ConversationID   uuid.UUID           `json:"conversationId"`
	ConversationKind ConversationKind    `json:"conversationKind"`
	TargetAmount     decimal.Decimal     `json:"targetAmount"`
	UnitPrice        decimal.NullDecimal `json:"unitPrice"`
	Quantity         null.Int            `json:"quantity"`
	Balance          decimal.Decimal     `json:"balance"`
	RequiredPartners int                 `json:"requiredPartners"`
	PaymentComplete  bool                `json:"paymentComplete"`
	CompletedAt      *time.Time          `json:"completedAt,omitempty"`
	Supplier         Supplier            `json:"supplier"`
	Pledges          []*Pledge           `json:"pledges"`
	Version          int64               `json:"-"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Pledge is one participant's payment attempt against a wallet
type Pledge struct {
	ID                  uuid.UUID       `json:"id"`
	WalletID            uuid.UUID       `json:"walletId"`
	UserID              uuid.UUID       `json:"userId"`
	Reference           string          `json:"reference"`
	AccessCode          string          `json:"-"`
	Amount              decimal.Decimal `json:"amount"`
	Quantity            null.Int        `json:"quantity"`
	PaymentStatus       PledgeStatus    `json:"paymentStatus"`
	ReceiptAcknowledged bool            `json:"receiptAcknowledged"`
	VerifiedAt          *time.Time      `json:"verifiedAt,omitempty"`
	LastCheckedAt       *time.Time      `json:"-"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// IsVerified reports whether the gateway confirmed the pledge
func (p *Pledge) IsVerified() bool {
	return p.PaymentStatus == PledgeStatusVerified
}

// FindPledge returns the pledge with the given reference, or nil
func (w *Wallet) FindPledge(reference string) *Pledge {
	for _, p := range w.Pledges {
		if p.Reference == reference {
			return p
		}
	}
	return nil
}

// VerifiedCount counts pledges confirmed by the gateway
func (w *Wallet) VerifiedCount() int {
	n := 0
	for _, p := range w.Pledges {
		if p.IsVerified() {
			n++
		}
	}
	return n
}

// VerifiedTotal sums the amounts of verified pledges
func (w *Wallet) VerifiedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range w.Pledges {
		if p.IsVerified() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// QuorumReached reports whether both the funding goal and the partner
// quorum are satisfied.
func (w *Wallet) QuorumReached() bool {
	required := w.RequiredPartners
	if required < 1 {
		required = 1
	}
	return w.Balance.GreaterThanOrEqual(w.TargetAmount) && w.VerifiedCount() >= required
}

// CreateWalletInput is the request body for wallet creation
type CreateWalletInput struct {
	Amount           decimal.Decimal     `json:"amount"`
	Quantity         null.Int            `json:"quantity"`
	UnitPrice        decimal.NullDecimal `json:"unitPrice"`
	RequiredPartners null.Int            `json:"requiredPartners"`
}

// Validate checks the amount and optional commercial context
func (in *CreateWalletInput) Validate() error {
	if !in.Amount.IsPositive() {
		return errAmountRequired
	}
	if !hasMoneyScale(in.Amount) {
		return errAmountPrecision
	}
	if in.Quantity.Valid && in.Quantity.Int < 1 {
		return errQuantityInvalid
	}
	if in.UnitPrice.Valid && in.UnitPrice.Decimal.IsNegative() {
		return errUnitPriceInvalid
	}
	if in.UnitPrice.Valid && !hasMoneyScale(in.UnitPrice.Decimal) {
		return errAmountPrecision
	}
	if in.RequiredPartners.Valid && in.RequiredPartners.Int < 1 {
		return errPartnersInvalid
	}
	return nil
}

// InitializePledgeInput is the request body for payment initialization
type InitializePledgeInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Quantity null.Int        `json:"quantity"`
}

// Validate checks the pledge amount
func (in *InitializePledgeInput) Validate() error {
	if !in.Amount.IsPositive() {
		return errAmountRequired
	}
	if !hasMoneyScale(in.Amount) {
		return errAmountPrecision
	}
	if in.Quantity.Valid && in.Quantity.Int < 1 {
		return errQuantityInvalid
	}
	return nil
}

// VerifyPledgeInput is the request body for payment verification.
// Amount is informational; the credited amount comes from the pledge and
// the gateway.
type VerifyPledgeInput struct {
	Reference string              `json:"reference" binding:"required"`
	Amount    decimal.NullDecimal `json:"amount"`
}

// Validate checks the reference and optional amount
func (in *VerifyPledgeInput) Validate() error {
	if in.Reference == "" {
		return errReferenceRequired
	}
	if in.Amount.Valid && in.Amount.Decimal.IsNegative() {
		return errAmountRequired
	}
	if in.Amount.Valid && !hasMoneyScale(in.Amount.Decimal) {
		return errAmountPrecision
	}
	return nil
}

// AcknowledgeReceiptInput is the request body for receipt acknowledgment
type AcknowledgeReceiptInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
}

// InitializePledgeResult is returned after a pledge has been reserved
type InitializePledgeResult struct {
	Reference        string      `json:"reference"`
	AccessCode       string      `json:"accessCode"`
	AuthorizationURL string      `json:"authorizationUrl,omitempty"`
	Wallet           *WalletView `json:"wallet"`
}

// VerifyPledgeResult carries the wallet after verification. Success is
// false when the gateway declined the payment.
type VerifyPledgeResult struct {
	Success bool        `json:"success"`
	Wallet  *WalletView `json:"wallet"`
}
