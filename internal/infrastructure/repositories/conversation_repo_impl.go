package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/infrastructure/models"
)

// ConversationRepository implements the chat and chatroom wallet binding
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID gets a conversation of the given kind with its participants
func (r *ConversationRepository) GetByID(ctx context.Context, kind entities.ConversationKind, id uuid.UUID) (*entities.Conversation, error) {
	return r.getOne(ctx, "id = ? AND kind = ?", id, string(kind))
}

// GetByWalletID gets the conversation a wallet is bound to
func (r *ConversationRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID) (*entities.Conversation, error) {
	return r.getOne(ctx, "wallet_id = ?", walletID)
}

func (r *ConversationRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entities.Conversation, error) {
	var m models.Conversation
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	var participants []models.ConversationParticipant
	if err := GetDB(withoutLock(ctx), r.db).
		Where("conversation_id = ?", m.ID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	m.Participants = participants
	return r.toEntity(&m), nil
}

// BindWallet sets the wallet on a conversation that has none
func (r *ConversationRepository) BindWallet(ctx context.Context, conversationID, walletID uuid.UUID) error {
	result := GetDB(withoutLock(ctx), r.db).Model(&models.Conversation{}).
		Where("id = ? AND wallet_id IS NULL", conversationID).
		Updates(map[string]interface{}{
			"wallet_id":  walletID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := GetDB(withoutLock(ctx), r.db).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrAlreadyExists
}

func (r *ConversationRepository) toEntity(m *models.Conversation) *entities.Conversation {
	c := &entities.Conversation{
		ID:             m.ID,
		Kind:           entities.ConversationKind(m.Kind),
		Title:          m.Title,
		AdminID:        m.AdminID,
		WalletID:       m.WalletID,
		ParticipantIDs: make([]uuid.UUID, 0, len(m.Participants)),
		CreatedAt:      m.CreatedAt,
	}
	for _, p := range m.Participants {
		c.ParticipantIDs = append(c.ParticipantIDs, p.UserID)
	}
	return c
}
