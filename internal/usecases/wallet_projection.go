package usecases

import (
	"context"

	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
)

// projectWallet resolves the users behind a wallet for display
func (u *EscrowUsecase) projectWallet(ctx context.Context, w *entities.Wallet) (*entities.WalletView, error) {
	views, err := u.projectWallets(ctx, []*entities.Wallet{w})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// projectWallets loads every referenced user in one query
func (u *EscrowUsecase) projectWallets(ctx context.Context, wallets []*entities.Wallet) ([]*entities.WalletView, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, w := range wallets {
		add(w.Supplier.UserID)
		for _, p := range w.Pledges {
			add(p.UserID)
		}
	}

	users := make(map[uuid.UUID]*entities.UserSummary, len(ids))
	if len(ids) > 0 {
		found, err := u.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, user := range found {
			users[user.ID] = user.Summary()
		}
	}

	views := make([]*entities.WalletView, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, buildWalletView(w, users))
	}
	return views, nil
}

func buildWalletView(w *entities.Wallet, users map[uuid.UUID]*entities.UserSummary) *entities.WalletView {
	view := &entities.WalletView{
		ID:               w.ID,
		WalletAddress:    w.WalletAddress,
		ExternalWalletID: w.ExternalWalletID,
		ConversationID:   w.ConversationID,
		ConversationKind: w.ConversationKind,
		TargetAmount:     w.TargetAmount,
		UnitPrice:        w.UnitPrice,
		Quantity:         w.Quantity,
		Balance:          w.Balance,
		RequiredPartners: w.RequiredPartners,
		VerifiedPartners: w.VerifiedCount(),
		PaymentComplete:  w.PaymentComplete,
		CompletedAt:      w.CompletedAt,
		Supplier: entities.SupplierView{
			User:                summaryFor(users, w.Supplier.UserID),
			ReceiptAcknowledged: w.Supplier.ReceiptAcknowledged,
		},
		Pledges:   make([]*entities.PledgeView, 0, len(w.Pledges)),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for _, p := range w.Pledges {
		view.Pledges = append(view.Pledges, &entities.PledgeView{
			ID:                  p.ID,
			User:                summaryFor(users, p.UserID),
			Reference:           p.Reference,
			Amount:              p.Amount,
			Quantity:            p.Quantity,
			PaymentStatus:       p.PaymentStatus,
			ReceiptAcknowledged: p.ReceiptAcknowledged,
			VerifiedAt:          p.VerifiedAt,
			CreatedAt:           p.CreatedAt,
		})
	}
	return view
}

// summaryFor falls back to a bare id when the user record is gone
func summaryFor(users map[uuid.UUID]*entities.UserSummary, id uuid.UUID) *entities.UserSummary {
	if s, ok := users[id]; ok {
		return s
	}
	return &entities.UserSummary{ID: id}
}
