// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "postdeck/internal/delivery/context"
	"postdeck/internal/domain/entity"
	domainerrors "postdeck/internal/domain/errors"
	"postdeck/internal/domain/repository"
	"postdeck/internal/domain/service"
	"postdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	hasher      service.PasswordHasher
	cache       service.AccountCache
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
// Cache is optional and nil when redis is not configured.
type AccountServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	Hasher      service.PasswordHasher
	Cache       service.AccountCache `optional:"true"`
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		hasher:      params.Hasher,
		cache:       params.Cache,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCurrentAccount returns the requester's own summary.
func (srv *accountService) GetCurrentAccount(ctx context.Context, identity *entity.Identity) (*usecase.AccountSummary, error) {
	account, err := srv.lookupAccount(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return usecase.NewAccountSummary(account), nil
}

// GetAccount resolves the target row first, then applies the hierarchy
// policy against it; a missing target is reported before any access check.
func (srv *accountService) GetAccount(ctx context.Context, identity *entity.Identity, targetID uuid.UUID) (*usecase.AccountSummary, error) {
	target, err := srv.lookupAccount(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !identity.CanAccess(target) {
		srv.log(ctx).Warn("Account access denied",
			slog.Any("requesterID", identity.ID),
			slog.String("requesterKind", identity.Kind.String()),
			slog.Any("targetID", targetID),
		)

		return nil, domainerrors.ErrForbidden.WrapMessage("account access denied")
	}

	return usecase.NewAccountSummary(target), nil
}

// ListSubAccounts returns all sub-accounts owned by the requester.
func (srv *accountService) ListSubAccounts(ctx context.Context, identity *entity.Identity) ([]*usecase.AccountSummary, error) {
	if identity.Kind != entity.KindBusiness {
		return nil, domainerrors.ErrForbidden.WrapMessage("only business accounts own sub-accounts")
	}

	accounts, err := srv.accountRepo.ListByParentID(ctx, identity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sub-accounts")
	}

	summaries := make([]*usecase.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, usecase.NewAccountSummary(account))
	}

	return summaries, nil
}

// UpdateProfile applies profile changes to the requester's own account.
// An empty username is ignored, but the row is still saved so updatedAt
// always reflects the request.
func (srv *accountService) UpdateProfile(ctx context.Context, identity *entity.Identity, input *usecase.UpdateProfileInput) (*usecase.AccountSummary, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("accountID", identity.ID))

	var updated *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, identity.ID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("profile update failed")
			}

			return errors.Wrap(err, "failed to find account")
		}

		if username := strings.TrimSpace(input.Username); username != "" {
			account.Username = username
		}

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account")
		}
		updated = account

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute profile update transaction", slog.Any("accountID", identity.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	srv.invalidateCache(ctx, identity.ID)

	return usecase.NewAccountSummary(updated), nil
}

// ChangePassword rotates the requester's credential after verifying the
// current one and checking the replacement against the strength policy.
func (srv *accountService) ChangePassword(ctx context.Context, identity *entity.Identity, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Changing password", slog.Any("accountID", identity.ID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, identity.ID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("password change failed")
			}

			return errors.Wrap(err, "failed to find account")
		}

		if !srv.hasher.Check(input.CurrentPassword, account.PasswordHash) {
			return domainerrors.ErrIncorrectCredentials.WrapMessage("password change failed")
		}

		if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
			return domainerrors.ErrPasswordStrength.WrapMessage(err.Error())
		}

		hashed, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}
		account.PasswordHash = hashed

		return errors.Wrap(accountRepo.Update(ctx, account), "failed to update account")
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute password change transaction", slog.Any("accountID", identity.ID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password change transaction")
	}

	srv.invalidateCache(ctx, identity.ID)

	return nil
}

// DeleteSubAccount removes one of the requester's own sub-accounts. A target
// that exists but belongs to someone else is reported as not found, not
// forbidden, so ownership of foreign ids is never disclosed.
func (srv *accountService) DeleteSubAccount(ctx context.Context, identity *entity.Identity, targetID uuid.UUID) error {
	if identity.Kind != entity.KindBusiness {
		return domainerrors.ErrForbidden.WrapMessage("only business accounts own sub-accounts")
	}

	srv.log(ctx).Info("Deleting sub-account", slog.Any("accountID", identity.ID), slog.Any("targetID", targetID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		target, err := accountRepo.FindByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("sub-account deletion failed")
			}

			return errors.Wrap(err, "failed to find sub-account")
		}

		if !target.IsSubaccountOf(identity.ID) {
			return domainerrors.ErrAccountNotFound.WrapMessage("sub-account deletion failed")
		}

		return errors.Wrap(accountRepo.Delete(ctx, targetID), "failed to delete sub-account")
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute sub-account deletion transaction", slog.Any("targetID", targetID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute sub-account deletion transaction")
	}

	srv.invalidateCache(ctx, targetID)

	return nil
}

// lookupAccount reads an account through the summary cache when configured,
// falling back to the repository and repopulating on a miss.
func (srv *accountService) lookupAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if srv.cache != nil {
		cached, found, err := srv.cache.Get(ctx, id)
		if err != nil {
			srv.log(ctx).Warn("Account cache read failed", slog.Any("accountID", id), slog.Any("error", err))
		} else if found {
			return cached, nil
		}
	}

	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	if srv.cache != nil {
		if err := srv.cache.Set(ctx, account); err != nil {
			srv.log(ctx).Warn("Account cache write failed", slog.Any("accountID", id), slog.Any("error", err))
		}
	}

	return account, nil
}

func (srv *accountService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if srv.cache == nil {
		return
	}
	if err := srv.cache.Invalidate(ctx, id); err != nil {
		srv.log(ctx).Warn("Account cache invalidation failed", slog.Any("accountID", id), slog.Any("error", err))
	}
}
