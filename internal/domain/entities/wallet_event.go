package entities

import (
	"time"

	"github.com/google/uuid"
)

// WalletEventType represents a wallet state change
type WalletEventType string

const (
	WalletEventCreated             WalletEventType = "WALLET_CREATED"
	WalletEventPledgeInitialized   WalletEventType = "PLEDGE_INITIALIZED"
	WalletEventPledgeVerified      WalletEventType = "PLEDGE_VERIFIED"
	WalletEventPledgeRemoved       WalletEventType = "PLEDGE_REMOVED"
	WalletEventPaymentCompleted    WalletEventType = "PAYMENT_COMPLETED"
	WalletEventReceiptAcknowledged WalletEventType = "RECEIPT_ACKNOWLEDGED"
)

// WalletEvent is an audit record of a wallet state change. It is also the
// payload handed to the event publisher.
type WalletEvent struct {
	ID               uuid.UUID        `json:"id"`
	WalletID         uuid.UUID        `json:"walletId"`
	WalletAddress    string           `json:"walletAddress"`
	ConversationID   uuid.UUID        `json:"conversationId"`
	ConversationKind ConversationKind `json:"conversationKind"`
	Type             WalletEventType  `json:"type"`
	Reference        string           `json:"reference,omitempty"`
	UserID           *uuid.UUID       `json:"userId,omitempty"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}
