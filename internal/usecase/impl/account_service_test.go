package impl

import (
	"context"
	"testing"
	"time"

	"postdeck/internal/domain/entity"
	domainerrors "postdeck/internal/domain/errors"
	"postdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service usecase.AccountUsecase
	store   *fakeAccountStore
	hasher  *fakePasswordHasher
	cache   *fakeAccountCache
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	t.Helper()

	store := newFakeAccountStore()
	hasher := &fakePasswordHasher{}
	cache := newFakeAccountCache()

	service := NewAccountService(AccountServiceParams{
		TxManager:   &fakeTxManager{store: store},
		AccountRepo: store,
		Hasher:      hasher,
		Cache:       cache,
		Logger:      newDiscardLogger(),
	})

	return accountServiceFixtures{
		service: service,
		store:   store,
		hasher:  hasher,
		cache:   cache,
	}
}

func identityOf(account *entity.Account) *entity.Identity {
	return &entity.Identity{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Kind:     account.Kind,
		ParentID: account.ParentID,
	}
}

func seedHierarchy(fix accountServiceFixtures) (business, sub, stranger *entity.Account) {
	business = fix.store.seed(&entity.Account{
		Username:     "acme",
		Email:        "acme@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindBusiness,
	})

	sub = fix.store.seed(&entity.Account{
		Username:     "acme-social",
		Email:        "social@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindSubaccount,
		ParentID:     &business.ID,
	})

	stranger = fix.store.seed(&entity.Account{
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})

	return business, sub, stranger
}

func TestAccountService_GetCurrentAccount(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})

	output, err := fix.service.GetCurrentAccount(ctx, identityOf(account))

	require.NoError(t, err)
	assert.Equal(t, account.ID, output.ID)
	assert.Equal(t, "alice", output.Username)

	// The lookup repopulates the cache.
	cached, found, err := fix.cache.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, account.ID, cached.ID)
}

func TestAccountService_GetAccount_AccessPolicy(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()
	business, sub, stranger := seedHierarchy(fix)

	testCases := []struct {
		name      string
		requester *entity.Account
		target    *entity.Account
		allowed   bool
	}{
		{"self access", stranger, stranger, true},
		{"business views own sub-account", business, sub, true},
		{"sub-account views its parent", sub, business, true},
		{"business views stranger", business, stranger, false},
		{"stranger views sub-account", stranger, sub, false},
		{"sub-account views stranger", sub, stranger, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := fix.service.GetAccount(ctx, identityOf(tc.requester), tc.target.ID)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.target.ID, output.ID)
			} else {
				require.Error(t, err)
				assert.Nil(t, output)
				assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
			}
		})
	}
}

func TestAccountService_GetAccount_NotFound(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})

	output, err := fix.service.GetAccount(ctx, identityOf(account), uuid.New())

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestAccountService_GetAccount_CacheFailureFallsBack(t *testing.T) {
	fix := createTestAccountService(t)
	fix.cache.getErr = errors.New("redis unavailable")
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})

	output, err := fix.service.GetCurrentAccount(ctx, identityOf(account))

	require.NoError(t, err)
	assert.Equal(t, account.ID, output.ID)
}

func TestAccountService_ListSubAccounts(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()
	business, sub, stranger := seedHierarchy(fix)

	summaries, err := fix.service.ListSubAccounts(ctx, identityOf(business))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, sub.ID, summaries[0].ID)

	// Non-business requesters are rejected outright.
	for _, requester := range []*entity.Account{stranger, sub} {
		_, err := fix.service.ListSubAccounts(ctx, identityOf(requester))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
	}
}

func TestAccountService_UpdateProfile(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})
	before := account.UpdatedAt

	time.Sleep(time.Millisecond)

	output, err := fix.service.UpdateProfile(ctx, identityOf(account), &usecase.UpdateProfileInput{
		Username: "alice-renamed",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", output.Username)
	assert.True(t, output.UpdatedAt.After(before))
	assert.Contains(t, fix.cache.invalidated, account.ID)
}

func TestAccountService_UpdateProfile_EmptyUsernameStillTouchesRow(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindIndividual,
	})
	before := account.UpdatedAt

	time.Sleep(time.Millisecond)

	output, err := fix.service.UpdateProfile(ctx, identityOf(account), &usecase.UpdateProfileInput{
		Username: "   ",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", output.Username)
	assert.True(t, output.UpdatedAt.After(before))
}

func TestAccountService_ChangePassword(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:OldPassword1!",
		Kind:         entity.KindIndividual,
	})

	err := fix.service.ChangePassword(ctx, identityOf(account), &usecase.ChangePasswordInput{
		CurrentPassword: "OldPassword1!",
		NewPassword:     "NewPassword1!",
	})

	require.NoError(t, err)

	stored, err := fix.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:NewPassword1!", stored.PasswordHash)
	assert.Contains(t, fix.cache.invalidated, account.ID)
}

func TestAccountService_ChangePassword_WrongCurrent(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:OldPassword1!",
		Kind:         entity.KindIndividual,
	})

	err := fix.service.ChangePassword(ctx, identityOf(account), &usecase.ChangePasswordInput{
		CurrentPassword: "NotTheOldOne!",
		NewPassword:     "NewPassword1!",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrIncorrectCredentials))

	stored, findErr := fix.store.FindByID(ctx, account.ID)
	require.NoError(t, findErr)
	assert.Equal(t, "hashed:OldPassword1!", stored.PasswordHash)
}

func TestAccountService_ChangePassword_WeakReplacement(t *testing.T) {
	fix := createTestAccountService(t)
	fix.hasher.strengthErr = errors.New("password must contain a number")
	ctx := context.Background()

	account := fix.store.seed(&entity.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:OldPassword1!",
		Kind:         entity.KindIndividual,
	})

	err := fix.service.ChangePassword(ctx, identityOf(account), &usecase.ChangePasswordInput{
		CurrentPassword: "OldPassword1!",
		NewPassword:     "weakpassword",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
}

func TestAccountService_DeleteSubAccount(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()
	business, sub, _ := seedHierarchy(fix)

	err := fix.service.DeleteSubAccount(ctx, identityOf(business), sub.ID)

	require.NoError(t, err)
	_, findErr := fix.store.FindByID(ctx, sub.ID)
	assert.Error(t, findErr)
	assert.Contains(t, fix.cache.invalidated, sub.ID)
}

func TestAccountService_DeleteSubAccount_NotBusiness(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()
	_, sub, stranger := seedHierarchy(fix)

	for _, requester := range []*entity.Account{stranger, sub} {
		err := fix.service.DeleteSubAccount(ctx, identityOf(requester), sub.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
	}
}

func TestAccountService_DeleteSubAccount_NotOwned(t *testing.T) {
	fix := createTestAccountService(t)
	ctx := context.Background()
	_, sub, _ := seedHierarchy(fix)

	otherBusiness := fix.store.seed(&entity.Account{
		Username:     "rival",
		Email:        "rival@example.com",
		PasswordHash: "hashed:Password123!",
		Kind:         entity.KindBusiness,
	})

	// A foreign sub-account reads as not found, never forbidden, so ids
	// cannot be probed for ownership.
	err := fix.service.DeleteSubAccount(ctx, identityOf(otherBusiness), sub.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))

	// Deleting a top-level account through this operation also reads as not found.
	err = fix.service.DeleteSubAccount(ctx, identityOf(otherBusiness), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))

	_, findErr := fix.store.FindByID(ctx, sub.ID)
	assert.NoError(t, findErr)
}
