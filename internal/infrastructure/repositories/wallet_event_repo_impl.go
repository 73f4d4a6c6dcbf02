package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"pharmapool.backend/internal/domain/entities"
	"pharmapool.backend/internal/infrastructure/models"
	"pharmapool.backend/pkg/utils"
)

// WalletEventRepository implements the wallet audit log
type WalletEventRepository struct {
	db *gorm.DB
}

// NewWalletEventRepository creates a new wallet event repository
func NewWalletEventRepository(db *gorm.DB) *WalletEventRepository {
	return &WalletEventRepository{db: db}
}

// Create appends an event
func (r *WalletEventRepository) Create(ctx context.Context, event *entities.WalletEvent) error {
	if event.ID == uuid.Nil {
		event.ID = utils.NewID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	metadata := "{}"
	if len(event.Metadata) > 0 {
		b, err := json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
		metadata = string(b)
	}

	m := &models.WalletEvent{
		ID:               event.ID,
		WalletID:         event.WalletID,
		WalletAddress:    event.WalletAddress,
		ConversationID:   event.ConversationID,
		ConversationKind: string(event.ConversationKind),
		EventType:        string(event.Type),
		Reference:        event.Reference,
		UserID:           event.UserID,
		Metadata:         metadata,
		CreatedAt:        event.CreatedAt,
	}
	return GetDB(withoutLock(ctx), r.db).Create(m).Error
}

// GetByWalletID gets events for a wallet in insertion order
func (r *WalletEventRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID) ([]*entities.WalletEvent, error) {
	var ms []models.WalletEvent
	if err := GetDB(withoutLock(ctx), r.db).
		Where("wallet_id = ?", walletID).
		Order("created_at ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	events := make([]*entities.WalletEvent, 0, len(ms))
	for i := range ms {
		events = append(events, r.toEntity(&ms[i]))
	}
	return events, nil
}

func (r *WalletEventRepository) toEntity(m *models.WalletEvent) *entities.WalletEvent {
	e := &entities.WalletEvent{
		ID:               m.ID,
		WalletID:         m.WalletID,
		WalletAddress:    m.WalletAddress,
		ConversationID:   m.ConversationID,
		ConversationKind: entities.ConversationKind(m.ConversationKind),
		Type:             entities.WalletEventType(m.EventType),
		Reference:        m.Reference,
		UserID:           m.UserID,
		CreatedAt:        m.CreatedAt,
	}
	if m.Metadata != "" && m.Metadata != "{}" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(m.Metadata), &meta); err == nil {
			e.Metadata = meta
		}
	}
	return e
}

