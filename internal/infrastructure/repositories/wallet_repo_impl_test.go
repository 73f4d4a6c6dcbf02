package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
)

func TestWalletRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	convID := seedConversation(t, db, entities.ConversationKindChat, supplier)

	w := newTestWallet(convID, supplier, 150)
	w.Quantity = null.IntFrom(10)
	w.UnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(15))
	require.NoError(t, repo.Create(ctx, w))
	require.NotEqual(t, uuid.Nil, w.ID)

	byID, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.WalletAddress, byID.WalletAddress)
	assert.True(t, byID.TargetAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, byID.Balance.IsZero())
	assert.Equal(t, 10, byID.Quantity.Int)
	assert.True(t, byID.UnitPrice.Valid)
	assert.Equal(t, supplier, byID.Supplier.UserID)
	assert.Empty(t, byID.Pledges)

	byAddr, err := repo.GetByAddress(ctx, w.WalletAddress)
	require.NoError(t, err)
	assert.Equal(t, w.ID, byAddr.ID)

	_, err = repo.GetByAddress(ctx, "ACCT_missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWalletRepository_CreateDuplicateConversation(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	convID := seedConversation(t, db, entities.ConversationKindChat, supplier)

	require.NoError(t, repo.Create(ctx, newTestWallet(convID, supplier, 100)))
	err := repo.Create(ctx, newTestWallet(convID, supplier, 100))
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestWalletRepository_PledgeLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	buyer := seedUser(t, db, "Bea")
	convID := seedConversation(t, db, entities.ConversationKindChat, supplier, buyer)
	w := newTestWallet(convID, supplier, 100)
	require.NoError(t, repo.Create(ctx, w))

	p := &entities.Pledge{
		WalletID:      w.ID,
		UserID:        buyer,
		Reference:     "ref-1",
		AccessCode:    "ac-1",
		Amount:        decimal.NewFromInt(60),
		PaymentStatus: entities.PledgeStatusPending,
	}
	require.NoError(t, repo.AddPledge(ctx, p))

	dup := &entities.Pledge{WalletID: w.ID, UserID: buyer, Reference: "ref-1", Amount: decimal.NewFromInt(1), PaymentStatus: entities.PledgeStatusPending}
	require.ErrorIs(t, repo.AddPledge(ctx, dup), domainerrors.ErrAlreadyExists)

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Pledges, 1)
	assert.Equal(t, "ac-1", got.Pledges[0].AccessCode)
	assert.Equal(t, entities.PledgeStatusPending, got.Pledges[0].PaymentStatus)

	now := time.Now()
	p.PaymentStatus = entities.PledgeStatusVerified
	p.VerifiedAt = &now
	p.ReceiptAcknowledged = true
	require.NoError(t, repo.UpdatePledge(ctx, p))

	got, err = repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Pledges[0].IsVerified())
	assert.True(t, got.Pledges[0].ReceiptAcknowledged)
	assert.NotNil(t, got.Pledges[0].VerifiedAt)

	require.ErrorIs(t, repo.UpdatePledge(ctx, &entities.Pledge{ID: uuid.New()}), domainerrors.ErrNotFound)

	removed, err := repo.RemovePledge(ctx, w.ID, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, removed.ID)
	assert.Equal(t, entities.PledgeStatusVerified, removed.PaymentStatus)
	assert.True(t, removed.Amount.Equal(decimal.NewFromInt(60)))

	_, err = repo.RemovePledge(ctx, w.ID, "ref-1")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err = repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Pledges)
}

func TestWalletRepository_SameReferenceOnDifferentWallets(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	w1 := newTestWallet(seedConversation(t, db, entities.ConversationKindChat, supplier), supplier, 100)
	w2 := newTestWallet(seedConversation(t, db, entities.ConversationKindChat, supplier), supplier, 100)
	require.NoError(t, repo.Create(ctx, w1))
	require.NoError(t, repo.Create(ctx, w2))

	for _, w := range []*entities.Wallet{w1, w2} {
		require.NoError(t, repo.AddPledge(ctx, &entities.Pledge{
			WalletID:      w.ID,
			UserID:        supplier,
			Reference:     "shared-ref",
			Amount:        decimal.NewFromInt(5),
			PaymentStatus: entities.PledgeStatusPending,
		}))
	}
}

func TestWalletRepository_UpdateVersionConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	w := newTestWallet(seedConversation(t, db, entities.ConversationKindChat, supplier), supplier, 100)
	require.NoError(t, repo.Create(ctx, w))

	first, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)

	first.Balance = decimal.NewFromInt(100)
	first.PaymentComplete = true
	completed := time.Now()
	first.CompletedAt = &completed
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	stale.Balance = decimal.NewFromInt(40)
	require.ErrorIs(t, repo.Update(ctx, stale), domainerrors.ErrConflict)

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.PaymentComplete)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1), got.Version)
}

func TestWalletRepository_ListAndStalePending(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	var wallets []*entities.Wallet
	for i := 0; i < 3; i++ {
		w := newTestWallet(seedConversation(t, db, entities.ConversationKindChatroom, supplier), supplier, 100)
		w.ConversationKind = entities.ConversationKindChatroom
		w.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, w))
		wallets = append(wallets, w)
	}

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, wallets[2].ID, page[0].ID)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.AddPledge(ctx, &entities.Pledge{
		WalletID: wallets[0].ID, UserID: supplier, Reference: "stale",
		Amount: decimal.NewFromInt(10), PaymentStatus: entities.PledgeStatusPending, CreatedAt: old,
	}))
	require.NoError(t, repo.AddPledge(ctx, &entities.Pledge{
		WalletID: wallets[0].ID, UserID: supplier, Reference: "fresh",
		Amount: decimal.NewFromInt(10), PaymentStatus: entities.PledgeStatusPending,
	}))
	require.NoError(t, repo.AddPledge(ctx, &entities.Pledge{
		WalletID: wallets[1].ID, UserID: supplier, Reference: "done",
		Amount: decimal.NewFromInt(10), PaymentStatus: entities.PledgeStatusVerified, CreatedAt: old,
	}))

	stale, err := repo.ListStalePending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "stale", stale[0].Reference)
	assert.Equal(t, wallets[0].WalletAddress, stale[0].WalletAddress)
}

func TestWalletRepository_StalePendingLeastRecentlyCheckedFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	supplier := seedUser(t, db, "Sam")
	w := newTestWallet(seedConversation(t, db, entities.ConversationKindChat, supplier), supplier, 100)
	require.NoError(t, repo.Create(ctx, w))

	base := time.Now().Add(-3 * time.Hour)
	for i, ref := range []string{"a", "b", "c"} {
		require.NoError(t, repo.AddPledge(ctx, &entities.Pledge{
			WalletID: w.ID, UserID: supplier, Reference: ref,
			Amount: decimal.NewFromInt(10), PaymentStatus: entities.PledgeStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	cutoff := time.Now().Add(-time.Hour)

	first, err := repo.ListStalePending(ctx, cutoff, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Reference)
	assert.Equal(t, "b", first[1].Reference)
	assert.Nil(t, first[0].LastCheckedAt)
	for _, p := range first {
		require.NoError(t, repo.MarkPledgeChecked(ctx, p.PledgeID, time.Now()))
	}

	next, err := repo.ListStalePending(ctx, cutoff, 2)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "c", next[0].Reference)

	// b was checked long ago, so it is due again but after the never-checked c.
	require.NoError(t, repo.MarkPledgeChecked(ctx, first[1].PledgeID, time.Now().Add(-2*time.Hour)))
	due, err := repo.ListStalePending(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "c", due[0].Reference)
	assert.Equal(t, "b", due[1].Reference)
	require.NotNil(t, due[1].LastCheckedAt)

	stored, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.FindPledge("a").LastCheckedAt)
}

func TestWalletRepository_LockedReadInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	uow := NewUnitOfWork(db)

	supplier := seedUser(t, db, "Sam")
	w := newTestWallet(seedConversation(t, db, entities.ConversationKindChat, supplier), supplier, 100)
	require.NoError(t, repo.Create(context.Background(), w))

	err := uow.Do(context.Background(), func(ctx context.Context) error {
		locked, err := repo.GetByAddress(uow.WithLock(ctx), w.WalletAddress)
		if err != nil {
			return err
		}
		locked.Balance = decimal.NewFromInt(25)
		return repo.Update(ctx, locked)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(25)))
}
