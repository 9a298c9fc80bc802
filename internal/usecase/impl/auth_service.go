// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

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

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new top-level account and mints its first token.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email), slog.String("kind", input.Kind))

	kind := entity.AccountKind(input.Kind)
	if !kind.IsRegistrable() {
		srv.log(ctx).Warn("Registration rejected for invalid kind", slog.String("kind", input.Kind))

		return nil, domainerrors.ErrInvalidAccountKind.WrapMessage("registration rejected")
	}

	hashedPassword, err := srv.hashNewPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	account := &entity.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Kind:         kind,
	}

	if err := srv.createAccount(ctx, account); err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", account.ID))

	return srv.issueToken(account)
}

// Login verifies credentials and mints a token. Unknown email and wrong
// password surface the same error so addresses cannot be enumerated.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, domainerrors.ErrIncorrectCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, domainerrors.ErrIncorrectCredentials.WrapMessage("login failed")
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("accountID", account.ID))

	return srv.issueToken(account)
}

// CreateSubAccount creates a sub-account owned by the given business account.
// The route middleware already requires a business token; the parent row is
// still re-resolved here so a stale token cannot attach children to a
// deleted or non-business account.
func (srv *authService) CreateSubAccount(ctx context.Context, parentID uuid.UUID, input *usecase.CreateSubAccountInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting sub-account creation", slog.Any("parentID", parentID), slog.String("email", input.Email))

	hashedPassword, err := srv.hashNewPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	subAccount := &entity.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Kind:         entity.KindSubaccount,
		ParentID:     &parentID,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		parent, err := accountRepo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrParentAccountInvalid.WrapMessage("sub-account creation failed")
			}

			return errors.Wrap(err, "failed to find parent account")
		}
		if parent.Kind != entity.KindBusiness {
			return domainerrors.ErrParentAccountInvalid.WrapMessage("sub-account creation failed")
		}

		if err := srv.ensureEmailUnused(ctx, accountRepo, input.Email); err != nil {
			return err
		}

		return accountRepo.Create(ctx, subAccount)
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute sub-account creation transaction", slog.Any("parentID", parentID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute sub-account creation transaction")
	}

	srv.log(ctx).Debug("Sub-account created", slog.Any("accountID", subAccount.ID), slog.Any("parentID", parentID))

	return srv.issueToken(subAccount)
}

// hashNewPassword enforces the strength policy before hashing a new credential.
func (srv *authService) hashNewPassword(ctx context.Context, password string) (string, error) {
	if err := srv.hasher.ValidatePasswordStrength(password); err != nil {
		srv.log(ctx).Warn("Password strength validation failed", slog.Any("error", err))

		return "", domainerrors.ErrPasswordStrength.WrapMessage(err.Error())
	}

	hashed, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return "", domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password")
	}

	return hashed, nil
}

// createAccount persists a new top-level account within a transaction,
// guarding email uniqueness.
func (srv *authService) createAccount(ctx context.Context, account *entity.Account) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		if err := srv.ensureEmailUnused(ctx, accountRepo, account.Email); err != nil {
			return err
		}

		return accountRepo.Create(ctx, account)
	})
}

// ensureEmailUnused reports a conflict when the email already has an account.
// The store-level unique index remains the final arbiter under concurrency.
func (srv *authService) ensureEmailUnused(ctx context.Context, accountRepo repository.AccountRepository, email string) error {
	_, err := accountRepo.FindByEmail(ctx, email)
	if err == nil {
		return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already has an account")
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return errors.Wrap(err, "failed to check email uniqueness")
	}

	return nil
}

func (srv *authService) issueToken(account *entity.Account) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.GenerateToken(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	return &usecase.AuthOutput{
		Account: usecase.NewAccountSummary(account),
		Token:   token,
	}, nil
}
