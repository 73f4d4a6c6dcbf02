package repositories

import (
	"context"

	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
)

// ConversationRepository defines the wallet binding on chats and chatrooms
type ConversationRepository interface {
	GetByID(ctx context.Context, kind entities.ConversationKind, id uuid.UUID) (*entities.Conversation, error)
	GetByWalletID(ctx context.Context, walletID uuid.UUID) (*entities.Conversation, error)
	// BindWallet attaches a wallet to a conversation that has none.
	// Returns ErrAlreadyExists when a wallet is already bound.
	BindWallet(ctx context.Context, conversationID, walletID uuid.UUID) error
}
