package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	domainRepos "pharmapool.backend/internal/domain/repositories"
	"pharmapool.backend/internal/infrastructure/models"
	"pharmapool.backend/pkg/utils"
)

// WalletRepository implements wallet and pledge ledger operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func preloadPledges(db *gorm.DB) *gorm.DB {
	return db.Order("pledges.created_at ASC, pledges.id ASC")
}

// Create creates a new wallet without pledges
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = utils.NewID()
	}
	now := time.Now()
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now

	m := walletToModel(wallet)
	if err := GetDB(ctx, r.db).Omit("Pledges").Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a wallet with its pledges
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByAddress gets a wallet by its gateway subaccount address
func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	return r.getOne(ctx, "wallet_address = ?", address)
}

func (r *WalletRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	// Pledges are read separately so a row lock on the wallet does not
	// leak into the pledge query.
	var pledges []models.Pledge
	if err := preloadPledges(GetDB(withoutLock(ctx), r.db)).
		Where("wallet_id = ?", m.ID).
		Find(&pledges).Error; err != nil {
		return nil, err
	}
	m.Pledges = pledges
	return walletToEntity(&m), nil
}

// List lists wallets, newest first
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*entities.Wallet, int64, error) {
	var total int64
	db := GetDB(ctx, r.db)
	if err := db.Model(&models.Wallet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := GetDB(ctx, r.db).
		Preload("Pledges", preloadPledges).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.Wallet
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		wallets = append(wallets, walletToEntity(&ms[i]))
	}
	return wallets, total, nil
}

// Update persists the mutable wallet fields guarded by the version column
func (r *WalletRepository) Update(ctx context.Context, wallet *entities.Wallet) error {
	now := time.Now()
	result := GetDB(withoutLock(ctx), r.db).Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"balance":                       wallet.Balance,
			"payment_complete":              wallet.PaymentComplete,
			"completed_at":                  wallet.CompletedAt,
			"supplier_receipt_acknowledged": wallet.Supplier.ReceiptAcknowledged,
			"version":                       wallet.Version + 1,
			"updated_at":                    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	wallet.Version++
	wallet.UpdatedAt = now
	return nil
}

// AddPledge appends a pledge to the ledger
func (r *WalletRepository) AddPledge(ctx context.Context, pledge *entities.Pledge) error {
	if pledge.ID == uuid.Nil {
		pledge.ID = utils.NewID()
	}
	if pledge.CreatedAt.IsZero() {
		pledge.CreatedAt = time.Now()
	}

	m := pledgeToModel(pledge)
	if err := GetDB(withoutLock(ctx), r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdatePledge persists pledge status and receipt
func (r *WalletRepository) UpdatePledge(ctx context.Context, pledge *entities.Pledge) error {
	result := GetDB(withoutLock(ctx), r.db).Model(&models.Pledge{}).
		Where("id = ?", pledge.ID).
		Updates(map[string]interface{}{
			"payment_status":       string(pledge.PaymentStatus),
			"amount":               pledge.Amount,
			"receipt_acknowledged": pledge.ReceiptAcknowledged,
			"verified_at":          pledge.VerifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// RemovePledge deletes the pledge and returns what was stored
func (r *WalletRepository) RemovePledge(ctx context.Context, walletID uuid.UUID, reference string) (*entities.Pledge, error) {
	db := GetDB(withoutLock(ctx), r.db)

	var m models.Pledge
	if err := db.Where("wallet_id = ? AND reference = ?", walletID, reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	result := GetDB(withoutLock(ctx), r.db).Where("id = ?", m.ID).Delete(&models.Pledge{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return pledgeToEntity(&m), nil
}

const lastTouched = "COALESCE(pledges.last_checked_at, pledges.created_at)"

// ListStalePending lists pending pledges not looked at since the cutoff
func (r *WalletRepository) ListStalePending(ctx context.Context, checkedBefore time.Time, limit int) ([]*domainRepos.PendingPledge, error) {
	var rows []struct {
		PledgeID      uuid.UUID
		WalletAddress string
		Reference     string
		CreatedAt     time.Time
		LastCheckedAt *time.Time
	}
	query := GetDB(ctx, r.db).
		Table("pledges").
		Select("pledges.id AS pledge_id, wallets.wallet_address, pledges.reference, pledges.created_at, pledges.last_checked_at").
		Joins("JOIN wallets ON wallets.id = pledges.wallet_id").
		Where("pledges.payment_status = ? AND "+lastTouched+" < ?", string(entities.PledgeStatusPending), checkedBefore).
		Order(lastTouched + " ASC, pledges.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*domainRepos.PendingPledge, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domainRepos.PendingPledge{
			PledgeID:      row.PledgeID,
			WalletAddress: row.WalletAddress,
			Reference:     row.Reference,
			CreatedAt:     row.CreatedAt,
			LastCheckedAt: row.LastCheckedAt,
		})
	}
	return out, nil
}

// MarkPledgeChecked records when the gateway was last asked about a
// pending pledge
func (r *WalletRepository) MarkPledgeChecked(ctx context.Context, pledgeID uuid.UUID, at time.Time) error {
	return GetDB(withoutLock(ctx), r.db).Model(&models.Pledge{}).
		Where("id = ? AND payment_status = ?", pledgeID, string(entities.PledgeStatusPending)).
		Update("last_checked_at", at).Error
}

func withoutLock(ctx context.Context) context.Context {
	if locked, ok := ctx.Value(lockKey).(bool); ok && locked {
		return context.WithValue(ctx, lockKey, false)
	}
	return ctx
}

func walletToModel(w *entities.Wallet) *models.Wallet {
	return &models.Wallet{
		ID:                          w.ID,
		WalletAddress:               w.WalletAddress,
		ExternalWalletID:            w.ExternalWalletID,
		ConversationID:              w.ConversationID,
		ConversationKind:            string(w.ConversationKind),
		TargetAmount:                w.TargetAmount,
		UnitPrice:                   w.UnitPrice,
		Quantity:                    w.Quantity.Ptr(),
		Balance:                     w.Balance,
		RequiredPartners:            w.RequiredPartners,
		PaymentComplete:             w.PaymentComplete,
		CompletedAt:                 w.CompletedAt,
		SupplierUserID:              w.Supplier.UserID,
		SupplierReceiptAcknowledged: w.Supplier.ReceiptAcknowledged,
		Version:                     w.Version,
		CreatedAt:                   w.CreatedAt,
		UpdatedAt:                   w.UpdatedAt,
	}
}

func walletToEntity(m *models.Wallet) *entities.Wallet {
	w := &entities.Wallet{
		ID:               m.ID,
		WalletAddress:    m.WalletAddress,
		ExternalWalletID: m.ExternalWalletID,
		ConversationID:   m.ConversationID,
		ConversationKind: entities.ConversationKind(m.ConversationKind),
		TargetAmount:     m.TargetAmount,
		UnitPrice:        m.UnitPrice,
		Quantity:         null.IntFromPtr(m.Quantity),
		Balance:          m.Balance,
		RequiredPartners: m.RequiredPartners,
		PaymentComplete:  m.PaymentComplete,
		CompletedAt:      m.CompletedAt,
		Supplier: entities.Supplier{
			UserID:              m.SupplierUserID,
			ReceiptAcknowledged: m.SupplierReceiptAcknowledged,
		},
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Pledges:   make([]*entities.Pledge, 0, len(m.Pledges)),
	}
	for i := range m.Pledges {
		w.Pledges = append(w.Pledges, pledgeToEntity(&m.Pledges[i]))
	}
	return w
}

func pledgeToModel(p *entities.Pledge) *models.Pledge {
	return &models.Pledge{
		ID:                  p.ID,
		WalletID:            p.WalletID,
		Reference:           p.Reference,
		UserID:              p.UserID,
		AccessCode:          p.AccessCode,
		Amount:              p.Amount,
		Quantity:            p.Quantity.Ptr(),
		PaymentStatus:       string(p.PaymentStatus),
		ReceiptAcknowledged: p.ReceiptAcknowledged,
		VerifiedAt:          p.VerifiedAt,
		LastCheckedAt:       p.LastCheckedAt,
		CreatedAt:           p.CreatedAt,
	}
}

func pledgeToEntity(m *models.Pledge) *entities.Pledge {
	return &entities.Pledge{
		ID:                  m.ID,
		WalletID:            m.WalletID,
		UserID:              m.UserID,
		Reference:           m.Reference,
		AccessCode:          m.AccessCode,
		Amount:              m.Amount,
		Quantity:            null.IntFromPtr(m.Quantity),
		PaymentStatus:       entities.PledgeStatus(m.PaymentStatus),
		ReceiptAcknowledged: m.ReceiptAcknowledged,
		VerifiedAt:          m.VerifiedAt,
		LastCheckedAt:       m.LastCheckedAt,
		CreatedAt:           m.CreatedAt,
	}
}
