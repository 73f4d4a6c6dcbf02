package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/domain/repositories"
	"pharmapool.backend/pkg/logger"
	"pharmapool.backend/pkg/metrics"
	"pharmapool.backend/pkg/utils"
)

// PaymentGateway creates subaccounts and opens/verifies checkout
// transactions. Implementations return domain AppErrors.
type PaymentGateway interface {
	CreateSubaccount(ctx context.Context, businessName string) (*entities.Subaccount, error)
	InitializeTransaction(ctx context.Context, req entities.TransactionRequest) (*entities.TransactionInit, error)
	VerifyTransaction(ctx context.Context, reference string) (*entities.TransactionVerification, error)
}

// EventPublisher notifies other services about wallet changes
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.WalletEvent) error
}

// EscrowConfig tunes the escrow engine
type EscrowConfig struct {
	DefaultRequiredPartners int
	LockRetries             int
	GatewayTimeout          time.Duration
}

const defaultGatewayTimeout = 15 * time.Second

// EscrowUsecase is the only writer of wallet and pledge state
type EscrowUsecase struct {
	walletRepo       repositories.WalletRepository
	conversationRepo repositories.ConversationRepository
	userRepo         repositories.UserRepository
	eventRepo        repositories.WalletEventRepository
	uow              repositories.UnitOfWork
	gateway          PaymentGateway
	publisher        EventPublisher
	cfg              EscrowConfig
}

// NewEscrowUsecase creates a new escrow usecase
func NewEscrowUsecase(
	walletRepo repositories.WalletRepository,
	conversationRepo repositories.ConversationRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.WalletEventRepository,
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
	publisher EventPublisher,
	cfg EscrowConfig,
) *EscrowUsecase {
	if cfg.DefaultRequiredPartners < 1 {
		cfg.DefaultRequiredPartners = 1
	}
	if cfg.LockRetries < 1 {
		cfg.LockRetries = 3
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}
	return &EscrowUsecase{
		walletRepo:       walletRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		uow:              uow,
		gateway:          gateway,
		publisher:        publisher,
		cfg:              cfg,
	}
}

// CreateWallet opens a gateway subaccount and binds a new wallet to the
// conversation. Nothing is stored when the gateway fails.
func (u *EscrowUsecase) CreateWallet(ctx context.Context, kind entities.ConversationKind, conversationID, requesterID uuid.UUID, input *entities.CreateWalletInput) (*entities.WalletDetails, error) {
	if err := input.Validate(); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	conv, err := u.conversationRepo.GetByID(ctx, kind, conversationID)
	if err != nil {
		return nil, notFoundOr(err, "conversation not found")
	}
	if !conv.HasParticipant(requesterID) {
		return nil, domainerrors.NotAuthorized("you are not a participant of this conversation")
	}
	if conv.WalletID != nil {
		return nil, domainerrors.AlreadyExists("conversation already has a wallet")
	}

	requester, err := u.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotAuthorized("user could not be resolved")
		}
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.cfg.GatewayTimeout)
	sub, err := u.gateway.CreateSubaccount(gwCtx, subaccountLabel(conv, requester))
	cancel()
	if err != nil {
		return nil, gatewayError(err, false, "failed to create wallet subaccount")
	}

	requiredPartners := u.cfg.DefaultRequiredPartners
	if input.RequiredPartners.Valid {
		requiredPartners = input.RequiredPartners.Int
	}

	wallet := &entities.Wallet{
		ID:               utils.NewID(),
		WalletAddress:    sub.Address,
		ExternalWalletID: sub.ExternalID,
		ConversationID:   conv.ID,
		ConversationKind: conv.Kind,
		TargetAmount:     input.Amount,
		UnitPrice:        input.UnitPrice,
		Quantity:         input.Quantity,
		Balance:          decimal.Zero,
		RequiredPartners: requiredPartners,
		Supplier:         entities.Supplier{UserID: requesterID},
		Pledges:          []*entities.Pledge{},
	}

	created := newWalletEvent(wallet, entities.WalletEventCreated, "", &requesterID, map[string]any{
		"targetAmount":     wallet.TargetAmount.StringFixed(2),
		"requiredPartners": wallet.RequiredPartners,
	})

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.walletRepo.Create(txCtx, wallet); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return domainerrors.AlreadyExists("conversation already has a wallet")
			}
			return err
		}
		if err := u.conversationRepo.BindWallet(txCtx, conv.ID, wallet.ID); err != nil {
			switch {
			case errors.Is(err, domainerrors.ErrAlreadyExists):
				return domainerrors.AlreadyExists("conversation already has a wallet")
			case errors.Is(err, domainerrors.ErrNotFound):
				return domainerrors.NotFound("conversation not found")
			}
			return err
		}
		return u.eventRepo.Create(txCtx, created)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			logger.Warn(ctx, "Wallet subaccount orphaned by concurrent wallet creation",
				zap.String("wallet_address", sub.Address),
				zap.String("conversation_id", conv.ID.String()),
			)
		}
		return nil, err
	}

	u.publish(ctx, created)
	logger.Info(ctx, "Wallet created",
		zap.String("wallet_address", wallet.WalletAddress),
		zap.String("conversation_id", conv.ID.String()),
		zap.String("kind", string(conv.Kind)),
	)

	conv.WalletID = &wallet.ID
	view, err := u.projectWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &entities.WalletDetails{Wallet: view, Conversation: conv}, nil
}

// InitializePledge opens a gateway checkout and records a pending pledge.
// The balance only moves on verification.
func (u *EscrowUsecase) InitializePledge(ctx context.Context, walletAddress string, userID uuid.UUID, input *entities.InitializePledgeInput) (*entities.InitializePledgeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	wallet, err := u.walletRepo.GetByAddress(ctx, walletAddress)
	if err != nil {
		return nil, notFoundOr(err, "wallet not found")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotAuthorized("user could not be resolved")
		}
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.cfg.GatewayTimeout)
	checkout, err := u.gateway.InitializeTransaction(gwCtx, entities.TransactionRequest{
		Email:       user.Email,
		AmountMinor: entities.MinorUnits(input.Amount),
		Subaccount:  wallet.WalletAddress,
	})
	cancel()
	if err != nil {
		return nil, gatewayError(err, false, "failed to initialize payment")
	}

	pledge := &entities.Pledge{
		ID:            utils.NewID(),
		WalletID:      wallet.ID,
		UserID:        userID,
		Reference:     checkout.Reference,
		AccessCode:    checkout.AccessCode,
		Amount:        input.Amount,
		Quantity:      input.Quantity,
		PaymentStatus: entities.PledgeStatusPending,
		CreatedAt:     time.Now(),
	}
	event := newWalletEvent(wallet, entities.WalletEventPledgeInitialized, pledge.Reference, &userID, map[string]any{
		"amount": pledge.Amount.StringFixed(2),
	})

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.walletRepo.AddPledge(txCtx, pledge); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return domainerrors.AlreadyExists("payment reference already recorded on this wallet")
			}
			return err
		}
		return u.eventRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, event)

	wallet.Pledges = append(wallet.Pledges, pledge)
	view, err := u.projectWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &entities.InitializePledgeResult{
		Reference:        checkout.Reference,
		AccessCode:       checkout.AccessCode,
		AuthorizationURL: checkout.AuthorizationURL,
		Wallet:           view,
	}, nil
}

// VerifyPledge asks the gateway for the outcome of a pending pledge and
// applies it. A declined payment is reported with Success=false, not as an
// error. userID is uuid.Nil for system callers; kind may be empty.
func (u *EscrowUsecase) VerifyPledge(ctx context.Context, kind entities.ConversationKind, walletAddress string, userID uuid.UUID, input *entities.VerifyPledgeInput) (*entities.VerifyPledgeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}
	reference := input.Reference

	wallet, err := u.walletRepo.GetByAddress(ctx, walletAddress)
	if err != nil {
		return nil, notFoundOr(err, "wallet not found")
	}
	if kind != "" && wallet.ConversationKind != kind {
		return nil, domainerrors.NotFound("wallet not found")
	}
	if userID != uuid.Nil {
		if err := u.requireParticipant(ctx, wallet.ID, userID); err != nil {
			return nil, err
		}
	}

	pledge := wallet.FindPledge(reference)
	if pledge == nil {
		return nil, domainerrors.NotFound("pledge not found")
	}
	if pledge.IsVerified() {
		return nil, domainerrors.AlreadyProcessed("pledge already verified")
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.cfg.GatewayTimeout)
	verification, err := u.gateway.VerifyTransaction(gwCtx, reference)
	cancel()
	if err != nil {
		metrics.ObservePledgeOutcome("retryable")
		logger.Warn(ctx, "Pledge verification inconclusive",
			zap.String("wallet_address", walletAddress),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, gatewayError(err, true, "payment status unknown, retry verification later")
	}

	switch {
	case verification.Status == entities.GatewayStatusSuccess:
		updated, err := u.applyVerified(ctx, wallet.ID, reference, verification)
		if err != nil {
			return nil, err
		}
		metrics.ObservePledgeOutcome("verified")
		view, err := u.projectWallet(ctx, updated)
		if err != nil {
			return nil, err
		}
		return &entities.VerifyPledgeResult{Success: true, Wallet: view}, nil

	case verification.Status.IsDeclined():
		updated, err := u.applyDeclined(ctx, wallet.ID, reference, verification.Status)
		if err != nil {
			return nil, err
		}
		metrics.ObservePledgeOutcome("declined")
		view, err := u.projectWallet(ctx, updated)
		if err != nil {
			return nil, err
		}
		return &entities.VerifyPledgeResult{Success: false, Wallet: view}, nil

	default:
		metrics.ObservePledgeOutcome("retryable")
		return nil, domainerrors.Retryable("payment is still "+string(verification.Status)+" at the gateway, retry verification later", nil)
	}
}

func (u *EscrowUsecase) applyVerified(ctx context.Context, walletID uuid.UUID, reference string, verification *entities.TransactionVerification) (*entities.Wallet, error) {
	return u.mutateWallet(ctx, walletID, func(txCtx context.Context, w *entities.Wallet) ([]*entities.WalletEvent, error) {
		pledge := w.FindPledge(reference)
		if pledge == nil {
			return nil, domainerrors.NotFound("pledge not found")
		}
		if pledge.IsVerified() {
			return nil, domainerrors.AlreadyProcessed("pledge already verified")
		}

		amount := pledge.Amount
		if verification.AmountMinor > 0 {
			amount = entities.MajorUnits(verification.AmountMinor)
		}
		now := time.Now()
		pledge.Amount = amount
		pledge.PaymentStatus = entities.PledgeStatusVerified
		pledge.VerifiedAt = &now
		if err := u.walletRepo.UpdatePledge(txCtx, pledge); err != nil {
			return nil, err
		}

		w.Balance = w.Balance.Add(amount)
		events := []*entities.WalletEvent{
			newWalletEvent(w, entities.WalletEventPledgeVerified, reference, &pledge.UserID, map[string]any{
				"amount":  amount.StringFixed(2),
				"balance": w.Balance.StringFixed(2),
			}),
		}

		// Completion is a one-way latch.
		if !w.PaymentComplete && w.QuorumReached() {
			w.PaymentComplete = true
			w.CompletedAt = &now
			events = append(events, newWalletEvent(w, entities.WalletEventPaymentCompleted, "", nil, map[string]any{
				"balance":          w.Balance.StringFixed(2),
				"verifiedPartners": w.VerifiedCount(),
			}))
		}
		return events, nil
	})
}

func (u *EscrowUsecase) applyDeclined(ctx context.Context, walletID uuid.UUID, reference string, status entities.GatewayStatus) (*entities.Wallet, error) {
	return u.mutateWallet(ctx, walletID, func(txCtx context.Context, w *entities.Wallet) ([]*entities.WalletEvent, error) {
		pledge := w.FindPledge(reference)
		if pledge == nil {
			return nil, domainerrors.NotFound("pledge not found")
		}
		if pledge.IsVerified() {
			return nil, domainerrors.AlreadyProcessed("pledge already verified")
		}

		removed, err := u.walletRepo.RemovePledge(txCtx, w.ID, reference)
		if err != nil {
			return nil, notFoundOr(err, "pledge not found")
		}

		kept := make([]*entities.Pledge, 0, len(w.Pledges))
		for _, p := range w.Pledges {
			if p.Reference != reference {
				kept = append(kept, p)
			}
		}
		w.Pledges = kept

		return []*entities.WalletEvent{
			newWalletEvent(w, entities.WalletEventPledgeRemoved, reference, &removed.UserID, map[string]any{
				"gatewayStatus": string(status),
				"amount":        removed.Amount.StringFixed(2),
				"paymentStatus": string(removed.PaymentStatus),
				"createdAt":     removed.CreatedAt.UTC().Format(time.RFC3339),
			}),
		}, nil
	})
}

// VerifyByGatewayCallback re-verifies a pledge on behalf of the gateway.
// Unknown wallets or references and replays are logged and ignored so the
// gateway stops retrying.
func (u *EscrowUsecase) VerifyByGatewayCallback(ctx context.Context, walletAddress, reference string) (*entities.VerifyPledgeResult, error) {
	result, err := u.VerifyPledge(ctx, "", walletAddress, uuid.Nil, &entities.VerifyPledgeInput{Reference: reference})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) || errors.Is(err, domainerrors.ErrAlreadyProcessed) {
			logger.Info(ctx, "Gateway callback ignored",
				zap.String("wallet_address", walletAddress),
				zap.String("reference", reference),
				zap.Error(err),
			)
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// AcknowledgeReceipt records that the caller received the goods (partner)
// or the funds (supplier). Repeated calls change nothing.
func (u *EscrowUsecase) AcknowledgeReceipt(ctx context.Context, kind entities.ConversationKind, userID uuid.UUID, input *entities.AcknowledgeReceiptInput) (*entities.WalletView, error) {
	conversationID, err := uuid.Parse(strings.TrimSpace(input.ConversationID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid conversation id")
	}

	conv, err := u.conversationRepo.GetByID(ctx, kind, conversationID)
	if err != nil {
		return nil, notFoundOr(err, "conversation not found")
	}
	if conv.WalletID == nil {
		return nil, domainerrors.NotFound("no wallet bound to this conversation")
	}
	if !conv.HasParticipant(userID) {
		return nil, domainerrors.NotAuthorized("you are not a participant of this conversation")
	}

	updated, err := u.mutateWallet(ctx, *conv.WalletID, func(txCtx context.Context, w *entities.Wallet) ([]*entities.WalletEvent, error) {
		if w.Supplier.UserID == userID {
			if w.Supplier.ReceiptAcknowledged {
				return nil, nil
			}
			w.Supplier.ReceiptAcknowledged = true
			return []*entities.WalletEvent{
				newWalletEvent(w, entities.WalletEventReceiptAcknowledged, "", &userID, map[string]any{"role": "supplier"}),
			}, nil
		}

		var owned, changed []string
		for _, p := range w.Pledges {
			if p.UserID != userID {
				continue
			}
			owned = append(owned, p.Reference)
			if p.ReceiptAcknowledged {
				continue
			}
			p.ReceiptAcknowledged = true
			if err := u.walletRepo.UpdatePledge(txCtx, p); err != nil {
				return nil, err
			}
			changed = append(changed, p.Reference)
		}
		if len(owned) == 0 {
			return nil, domainerrors.NotAuthorized("you have no pledge on this wallet")
		}
		if len(changed) == 0 {
			return nil, nil
		}
		return []*entities.WalletEvent{
			newWalletEvent(w, entities.WalletEventReceiptAcknowledged, "", &userID, map[string]any{
				"role":       "partner",
				"references": changed,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return u.projectWallet(ctx, updated)
}

// GetWalletDetails returns the wallet bound to a conversation
func (u *EscrowUsecase) GetWalletDetails(ctx context.Context, kind entities.ConversationKind, conversationID, userID uuid.UUID) (*entities.WalletDetails, error) {
	conv, err := u.conversationRepo.GetByID(ctx, kind, conversationID)
	if err != nil {
		return nil, notFoundOr(err, "conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return nil, domainerrors.NotAuthorized("you are not a participant of this conversation")
	}
	if conv.WalletID == nil {
		return nil, domainerrors.NotFound("no wallet bound to this conversation")
	}

	wallet, err := u.walletRepo.GetByID(ctx, *conv.WalletID)
	if err != nil {
		return nil, notFoundOr(err, "wallet not found")
	}
	view, err := u.projectWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &entities.WalletDetails{Wallet: view, Conversation: conv}, nil
}

// ReconcileSummary counts what a reconciliation pass did
type ReconcileSummary struct {
	Checked  int
	Verified int
	Removed  int
	Pending  int
	Failed   int
}

// ReconcilePending re-verifies pledges nobody has looked at for olderThan.
// Each checked pledge is stamped first, so pledges the gateway never
// resolves rotate to the back of the queue instead of filling every batch.
// Per-pledge failures are logged and counted.
func (u *EscrowUsecase) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (*ReconcileSummary, error) {
	stale, err := u.walletRepo.ListStalePending(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{}
	for _, p := range stale {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Checked++

		if err := u.walletRepo.MarkPledgeChecked(ctx, p.PledgeID, time.Now()); err != nil {
			logger.Warn(ctx, "Failed to stamp pending pledge check",
				zap.String("reference", p.Reference),
				zap.Error(err),
			)
		}

		result, err := u.VerifyPledge(ctx, "", p.WalletAddress, uuid.Nil, &entities.VerifyPledgeInput{Reference: p.Reference})
		switch {
		case err == nil && result.Success:
			summary.Verified++
		case err == nil:
			summary.Removed++
		case errors.Is(err, domainerrors.ErrRetryable):
			summary.Pending++
		default:
			summary.Failed++
			logger.Warn(ctx, "Pending pledge reconciliation failed",
				zap.String("wallet_address", p.WalletAddress),
				zap.String("reference", p.Reference),
				zap.Error(err),
			)
		}
	}
	return summary, nil
}

// ListWallets lists wallets for the admin console
func (u *EscrowUsecase) ListWallets(ctx context.Context, page utils.Page) ([]*entities.WalletView, int64, error) {
	wallets, total, err := u.walletRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	views, err := u.projectWallets(ctx, wallets)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// GetWalletByID returns a wallet and its conversation for the admin console
func (u *EscrowUsecase) GetWalletByID(ctx context.Context, id uuid.UUID) (*entities.WalletDetails, error) {
	wallet, err := u.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "wallet not found")
	}
	conv, err := u.conversationRepo.GetByWalletID(ctx, wallet.ID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	view, err := u.projectWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &entities.WalletDetails{Wallet: view, Conversation: conv}, nil
}

// ListWalletEvents returns a wallet's audit trail
func (u *EscrowUsecase) ListWalletEvents(ctx context.Context, id uuid.UUID) ([]*entities.WalletEvent, error) {
	if _, err := u.walletRepo.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "wallet not found")
	}
	return u.eventRepo.GetByWalletID(ctx, id)
}

type walletMutation func(txCtx context.Context, w *entities.Wallet) ([]*entities.WalletEvent, error)

// mutateWallet runs fn against a locked, freshly read wallet and persists
// the result with a version check. A lost race is retried. fn returning no
// events means nothing changed and nothing is written.
func (u *EscrowUsecase) mutateWallet(ctx context.Context, walletID uuid.UUID, fn walletMutation) (*entities.Wallet, error) {
	for attempt := 1; ; attempt++ {
		var (
			result *entities.Wallet
			events []*entities.WalletEvent
		)
		err := u.uow.Do(ctx, func(txCtx context.Context) error {
			w, err := u.walletRepo.GetByID(u.uow.WithLock(txCtx), walletID)
			if err != nil {
				return notFoundOr(err, "wallet not found")
			}

			events, err = fn(txCtx, w)
			if err != nil {
				return err
			}
			result = w
			if len(events) == 0 {
				return nil
			}

			if err := u.walletRepo.Update(txCtx, w); err != nil {
				return err
			}
			for _, e := range events {
				if err := u.eventRepo.Create(txCtx, e); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			for _, e := range events {
				if e.Type == entities.WalletEventPaymentCompleted {
					metrics.IncWalletsCompleted()
				}
				u.publish(ctx, e)
			}
			return result, nil
		}
		if !errors.Is(err, domainerrors.ErrConflict) {
			return nil, err
		}

		metrics.IncLockRetries()
		if attempt >= u.cfg.LockRetries {
			logger.Warn(ctx, "Wallet update kept conflicting",
				zap.String("wallet_id", walletID.String()),
				zap.Int("attempts", attempt),
			)
			return nil, domainerrors.Retryable("wallet is busy, retry later", err)
		}
	}
}

func (u *EscrowUsecase) requireParticipant(ctx context.Context, walletID, userID uuid.UUID) error {
	conv, err := u.conversationRepo.GetByWalletID(ctx, walletID)
	if err != nil {
		return notFoundOr(err, "conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return domainerrors.NotAuthorized("you are not a participant of this conversation")
	}
	return nil
}

func (u *EscrowUsecase) publish(ctx context.Context, event *entities.WalletEvent) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish wallet event",
			zap.String("type", string(event.Type)),
			zap.String("wallet_address", event.WalletAddress),
			zap.Error(err),
		)
	}
}

func newWalletEvent(w *entities.Wallet, eventType entities.WalletEventType, reference string, userID *uuid.UUID, metadata map[string]any) *entities.WalletEvent {
	return &entities.WalletEvent{
		ID:               utils.NewID(),
		WalletID:         w.ID,
		WalletAddress:    w.WalletAddress,
		ConversationID:   w.ConversationID,
		ConversationKind: w.ConversationKind,
		Type:             eventType,
		Reference:        reference,
		UserID:           userID,
		Metadata:         metadata,
		CreatedAt:        time.Now(),
	}
}

func subaccountLabel(conv *entities.Conversation, requester *entities.User) string {
	name := requester.FirstName
	if conv.Kind == entities.ConversationKindChatroom && strings.TrimSpace(conv.Title) != "" {
		name = strings.TrimSpace(conv.Title)
	}
	return name + " business"
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		var appErr *domainerrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return domainerrors.NotFound(message)
	}
	return err
}

// gatewayError keeps AppErrors from the adapter and classifies the rest.
// Verification failures are retryable because the outcome is unknown.
func gatewayError(err error, retryable bool, message string) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if retryable {
		return domainerrors.Retryable(message, err)
	}
	return domainerrors.UpstreamUnavailable(message, err)
}
