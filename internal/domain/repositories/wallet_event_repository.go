package repositories

import (
	"context"

	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
)

// WalletEventRepository defines the wallet audit log
type WalletEventRepository interface {
	Create(ctx context.Context, event *entities.WalletEvent) error
	GetByWalletID(ctx context.Context, walletID uuid.UUID) ([]*entities.WalletEvent, error)
}
