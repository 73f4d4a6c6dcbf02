package entities

import (
	"time"

	"github.com/google/uuid"
)

// ConversationKind distinguishes direct chats from group chatrooms
type ConversationKind string

const (
	ConversationKindChat     ConversationKind = "chat"
	ConversationKindChatroom ConversationKind = "chatroom"
)

// ParseConversationKind validates a kind taken from a request path
func ParseConversationKind(s string) (ConversationKind, bool) {
	switch ConversationKind(s) {
	case ConversationKindChat, ConversationKindChatroom:
		return ConversationKind(s), true
	default:
		return "", false
	}
}

// Conversation is a chat or chatroom a wallet can be bound to
type Conversation struct {
	ID             uuid.UUID        `json:"id"`
	Kind           ConversationKind `json:"kind"`
	Title          string           `json:"title,omitempty"`
	AdminID        *uuid.UUID       `json:"adminId,omitempty"`
	WalletID       *uuid.UUID       `json:"walletId,omitempty"`
	ParticipantIDs []uuid.UUID      `json:"participantIds"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// HasParticipant reports whether the user belongs to the conversation
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
