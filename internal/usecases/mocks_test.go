package usecases_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/domain/repositories"
)

// memStore is an in-memory escrow database. The unit of work snapshots it
// so a failed Do rolls every write back.
type memStore struct {
	mu            sync.Mutex
	wallets       map[uuid.UUID]*entities.Wallet
	conversations map[uuid.UUID]*entities.Conversation
	users         map[uuid.UUID]*entities.User
	events        []*entities.WalletEvent
}

func newMemStore() *memStore {
	return &memStore{
		wallets:       make(map[uuid.UUID]*entities.Wallet),
		conversations: make(map[uuid.UUID]*entities.Conversation),
		users:         make(map[uuid.UUID]*entities.User),
	}
}

func copyWallet(w *entities.Wallet) *entities.Wallet {
	c := *w
	c.Pledges = make([]*entities.Pledge, 0, len(w.Pledges))
	for _, p := range w.Pledges {
		pc := *p
		c.Pledges = append(c.Pledges, &pc)
	}
	return &c
}

func copyConversation(conv *entities.Conversation) *entities.Conversation {
	c := *conv
	c.ParticipantIDs = append([]uuid.UUID(nil), conv.ParticipantIDs...)
	if conv.WalletID != nil {
		id := *conv.WalletID
		c.WalletID = &id
	}
	return &c
}

type memSnapshot struct {
	wallets       map[uuid.UUID]*entities.Wallet
	conversations map[uuid.UUID]*entities.Conversation
	events        []*entities.WalletEvent
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		wallets:       make(map[uuid.UUID]*entities.Wallet, len(s.wallets)),
		conversations: make(map[uuid.UUID]*entities.Conversation, len(s.conversations)),
		events:        append([]*entities.WalletEvent(nil), s.events...),
	}
	for id, w := range s.wallets {
		snap.wallets[id] = copyWallet(w)
	}
	for id, c := range s.conversations {
		snap.conversations[id] = copyConversation(c)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = snap.wallets
	s.conversations = snap.conversations
	s.events = snap.events
}

// stubUnitOfWork serializes transactions and rolls back on error
type stubUnitOfWork struct {
	store  *memStore
	txMu   sync.Mutex
	calls  int
	locked int
}

type stubTxKey struct{}

func (u *stubUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(stubTxKey{}) != nil {
		return fn(ctx)
	}
	u.txMu.Lock()
	defer u.txMu.Unlock()
	u.calls++

	snap := u.store.snapshot()
	if err := fn(context.WithValue(ctx, stubTxKey{}, true)); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

func (u *stubUnitOfWork) WithLock(ctx context.Context) context.Context {
	u.locked++
	return ctx
}

type stubWalletRepo struct {
	store *memStore
	// conflicts makes the next N Update calls lose the version race
	conflicts int
	updates   int
}

var _ repositories.WalletRepository = (*stubWalletRepo)(nil)

func (r *stubWalletRepo) Create(_ context.Context, w *entities.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.wallets {
		if existing.ConversationID == w.ConversationID || existing.WalletAddress == w.WalletAddress {
			return domainerrors.ErrAlreadyExists
		}
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now()
	w.CreatedAt, w.UpdatedAt = now, now
	r.store.wallets[w.ID] = copyWallet(w)
	return nil
}

func (r *stubWalletRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return copyWallet(w), nil
}

func (r *stubWalletRepo) GetByAddress(_ context.Context, address string) (*entities.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.wallets {
		if w.WalletAddress == address {
			return copyWallet(w), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *stubWalletRepo) List(_ context.Context, limit, offset int) ([]*entities.Wallet, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := make([]*entities.Wallet, 0, len(r.store.wallets))
	for _, w := range r.store.wallets {
		all = append(all, copyWallet(w))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *stubWalletRepo) Update(_ context.Context, w *entities.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return domainerrors.ErrConflict
	}
	stored, ok := r.store.wallets[w.ID]
	if !ok || stored.Version != w.Version {
		return domainerrors.ErrConflict
	}
	r.updates++
	stored.Balance = w.Balance
	stored.PaymentComplete = w.PaymentComplete
	stored.CompletedAt = w.CompletedAt
	stored.Supplier.ReceiptAcknowledged = w.Supplier.ReceiptAcknowledged
	stored.Version++
	stored.UpdatedAt = time.Now()
	w.Version = stored.Version
	return nil
}

func (r *stubWalletRepo) AddPledge(_ context.Context, p *entities.Pledge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[p.WalletID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if w.FindPledge(p.Reference) != nil {
		return domainerrors.ErrAlreadyExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	pc := *p
	w.Pledges = append(w.Pledges, &pc)
	return nil
}

func (r *stubWalletRepo) UpdatePledge(_ context.Context, p *entities.Pledge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[p.WalletID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	for i, existing := range w.Pledges {
		if existing.ID == p.ID {
			pc := *p
			w.Pledges[i] = &pc
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (r *stubWalletRepo) RemovePledge(_ context.Context, walletID uuid.UUID, reference string) (*entities.Pledge, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[walletID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	for i, p := range w.Pledges {
		if p.Reference == reference {
			w.Pledges = append(w.Pledges[:i:i], w.Pledges[i+1:]...)
			return p, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *stubWalletRepo) ListStalePending(_ context.Context, checkedBefore time.Time, limit int) ([]*repositories.PendingPledge, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	touched := func(p *repositories.PendingPledge) time.Time {
		if p.LastCheckedAt != nil {
			return *p.LastCheckedAt
		}
		return p.CreatedAt
	}
	var out []*repositories.PendingPledge
	for _, w := range r.store.wallets {
		for _, p := range w.Pledges {
			if p.PaymentStatus != entities.PledgeStatusPending {
				continue
			}
			pp := &repositories.PendingPledge{
				PledgeID:      p.ID,
				WalletAddress: w.WalletAddress,
				Reference:     p.Reference,
				CreatedAt:     p.CreatedAt,
				LastCheckedAt: p.LastCheckedAt,
			}
			if touched(pp).Before(checkedBefore) {
				out = append(out, pp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return touched(out[i]).Before(touched(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubWalletRepo) MarkPledgeChecked(_ context.Context, pledgeID uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.wallets {
		for _, p := range w.Pledges {
			if p.ID == pledgeID && p.PaymentStatus == entities.PledgeStatusPending {
				stamp := at
				p.LastCheckedAt = &stamp
			}
		}
	}
	return nil
}

type stubConversationRepo struct {
	store *memStore
	// bindErr simulates a binding race lost to another request
	bindErr error
}

func (r *stubConversationRepo) GetByID(_ context.Context, kind entities.ConversationKind, id uuid.UUID) (*entities.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[id]
	if !ok || c.Kind != kind {
		return nil, domainerrors.ErrNotFound
	}
	return copyConversation(c), nil
}

func (r *stubConversationRepo) GetByWalletID(_ context.Context, walletID uuid.UUID) (*entities.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if c.WalletID != nil && *c.WalletID == walletID {
			return copyConversation(c), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *stubConversationRepo) BindWallet(_ context.Context, conversationID, walletID uuid.UUID) error {
	if r.bindErr != nil {
		return r.bindErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[conversationID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if c.WalletID != nil {
		return domainerrors.ErrAlreadyExists
	}
	id := walletID
	c.WalletID = &id
	return nil
}

type stubUserRepo struct {
	store *memStore
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.User
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubEventRepo struct {
	store *memStore
}

func (r *stubEventRepo) Create(_ context.Context, e *entities.WalletEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, e)
	return nil
}

func (r *stubEventRepo) GetByWalletID(_ context.Context, walletID uuid.UUID) ([]*entities.WalletEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.WalletEvent
	for _, e := range r.store.events {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockPaymentGateway mocks PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateSubaccount(ctx context.Context, businessName string) (*entities.Subaccount, error) {
	args := m.Called(ctx, businessName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subaccount), args.Error(1)
}

func (m *MockPaymentGateway) InitializeTransaction(ctx context.Context, req entities.TransactionRequest) (*entities.TransactionInit, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransactionInit), args.Error(1)
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (*entities.TransactionVerification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransactionVerification), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.WalletEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *entities.WalletEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []entities.WalletEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.WalletEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
