package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"postdeck/internal/domain/entity"
	domainerrors "postdeck/internal/domain/errors"
	"postdeck/internal/domain/repository"
	"postdeck/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountStore is an in-memory AccountRepository shared by the fake
// transaction manager, so state written inside a transaction is visible to
// later assertions.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account

	findErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*entity.Account)}
}

func (s *fakeAccountStore) seed(account *entity.Account) *entity.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
		account.UpdatedAt = now
	}
	stored := *account
	s.accounts[account.ID] = &stored

	return account
}

func (s *fakeAccountStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}

	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	clone := *account

	return &clone, nil
}

func (s *fakeAccountStore) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}

	for _, account := range s.accounts {
		if account.Email == email {
			clone := *account

			return &clone, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (s *fakeAccountStore) ListByParentID(_ context.Context, parentID uuid.UUID) ([]*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []*entity.Account
	for _, account := range s.accounts {
		if account.ParentID != nil && *account.ParentID == parentID {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}

	return accounts, nil
}

func (s *fakeAccountStore) Create(_ context.Context, account *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}

	// The unique email index backs this check in production.
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists")
		}
	}

	account.ID = uuid.New()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	s.accounts[account.ID] = &stored

	return nil
}

func (s *fakeAccountStore) Update(_ context.Context, account *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return s.updateErr
	}

	if _, ok := s.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}

	account.UpdatedAt = time.Now()
	stored := *account
	s.accounts[account.ID] = &stored

	return nil
}

func (s *fakeAccountStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}

	if _, ok := s.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(s.accounts, id)

	// Cascade like the database foreign key does.
	for childID, child := range s.accounts {
		if child.ParentID != nil && *child.ParentID == id {
			delete(s.accounts, childID)
		}
	}

	return nil
}

// fakeTxManager runs the callback directly against the shared store.
type fakeTxManager struct {
	store *fakeAccountStore
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeFactory{store: m.store})
}

type fakeFactory struct {
	store *fakeAccountStore
}

func (f *fakeFactory) AccountRepo() repository.AccountRepository {
	return f.store
}

// fakePasswordHasher hashes by prefixing, so tests can assert stored values.
type fakePasswordHasher struct {
	strengthErr error
	hashErr     error
}

func (h *fakePasswordHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakePasswordHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (h *fakePasswordHasher) ValidatePasswordStrength(string) error {
	return h.strengthErr
}

// fakeTokenService issues predictable tokens keyed by account id.
type fakeTokenService struct {
	generateErr error
}

func (s *fakeTokenService) GenerateToken(account *entity.Account) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}

	return "token:" + account.ID.String(), nil
}

func (s *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	return nil, fmt.Errorf("unexpected ValidateToken call with %q", tokenString)
}

func (s *fakeTokenService) AccessTokenDuration() time.Duration {
	return 7 * 24 * time.Hour
}

// fakeAccountCache records cache traffic for assertions.
type fakeAccountCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*entity.Account
	invalidated []uuid.UUID
	getErr      error
}

func newFakeAccountCache() *fakeAccountCache {
	return &fakeAccountCache{entries: make(map[uuid.UUID]*entity.Account)}
}

func (c *fakeAccountCache) Get(_ context.Context, id uuid.UUID) (*entity.Account, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, false, c.getErr
	}

	account, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	clone := *account

	return &clone, true, nil
}

func (c *fakeAccountCache) Set(_ context.Context, account *entity.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := *account
	c.entries[account.ID] = &clone

	return nil
}

func (c *fakeAccountCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)

	return nil
}
