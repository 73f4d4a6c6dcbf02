package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
)

// WalletRepository defines wallet and pledge ledger operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*entities.Wallet, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Wallet, int64, error)
	// Update persists balance, completion and supplier receipt with a
	// compare-and-swap on Version. Returns ErrConflict when the stored
	// version moved on; on success wallet.Version is incremented.
	Update(ctx context.Context, wallet *entities.Wallet) error

	// AddPledge appends a pledge. Returns ErrAlreadyExists on a duplicate
	// (wallet, reference) pair.
	AddPledge(ctx context.Context, pledge *entities.Pledge) error
	UpdatePledge(ctx context.Context, pledge *entities.Pledge) error
	// RemovePledge deletes a pledge and returns its prior state
	RemovePledge(ctx context.Context, walletID uuid.UUID, reference string) (*entities.Pledge, error)
	// ListStalePending returns pending pledges whose last gateway check,
	// or creation when never checked, is before the cutoff. Least recently
	// checked come first.
	ListStalePending(ctx context.Context, checkedBefore time.Time, limit int) ([]*PendingPledge, error)
	// MarkPledgeChecked stamps a pending pledge with the time it was last
	// asked about at the gateway. Settled or removed pledges are left alone.
	MarkPledgeChecked(ctx context.Context, pledgeID uuid.UUID, at time.Time) error
}

// PendingPledge identifies a pledge awaiting gateway confirmation
type PendingPledge struct {
	PledgeID      uuid.UUID
	WalletAddress string
	Reference     string
	CreatedAt     time.Time
	LastCheckedAt *time.Time
}
