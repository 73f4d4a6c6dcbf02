package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// SupplierView is the supplier with its user resolved
type SupplierView struct {
	User                *UserSummary `json:"user"`
	ReceiptAcknowledged bool         `json:"receiptAcknowledged"`
}

// PledgeView is a pledge with its user resolved
type PledgeView struct {
	ID                  uuid.UUID       `json:"id"`
	User                *UserSummary    `json:"user"`
	Reference           string          `json:"reference"`
	Amount              decimal.Decimal `json:"amount"`
	Quantity            null.Int        `json:"quantity"`
	PaymentStatus       PledgeStatus    `json:"paymentStatus"`
	ReceiptAcknowledged bool            `json:"receiptAcknowledged"`
	VerifiedAt          *time.Time      `json:"verifiedAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// WalletView is the read-side projection returned to clients
type WalletView struct {
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
	VerifiedPartners int                 `json:"verifiedPartners"`
	PaymentComplete  bool                `json:"paymentComplete"`
	CompletedAt      *time.Time          `json:"completedAt,omitempty"`
	Supplier         SupplierView        `json:"supplier"`
	Pledges          []*PledgeView       `json:"pledges"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// WalletDetails pairs a wallet with the conversation it funds
type WalletDetails struct {
	Wallet       *WalletView   `json:"wallet"`
	Conversation *Conversation `json:"conversation"`
}
