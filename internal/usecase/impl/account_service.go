// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"peppers/config"
	deliverycontext "peppers/internal/delivery/context"
	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/repository"
	"peppers/internal/domain/service"
	"peppers/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const minPasswordLength = 6

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	verifier     service.IdentityVerifier
	cfg          *config.AuthConfig
	logger       *slog.Logger
	now          func() time.Time
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Verifier     service.IdentityVerifier
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		verifier:     params.Verifier,
		cfg:          params.Config.Auth,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a local phone+password account. When the bootstrap phone
// matches and no elevated account exists yet, the new account is promoted to
// admin inside the same transaction.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	phone := entity.NormalizePhone(input.Phone)
	if phone == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("phone is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "hash password")
	}

	var created *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByPhone(ctx, phone)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("phone number already registered")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "find user by phone")
		}

		now := srv.now()
		user := &entity.User{
			Phone:        phone,
			PasswordHash: hashed,
			DisplayName:  strings.TrimSpace(input.DisplayName),
			Role:         entity.RoleCustomer,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
			LastLoginAt:  now,
		}
		srv.maybePromoteBootstrap(ctx, userRepo, user)

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domainerrors.ErrUserAlreadyExists.WrapMessage("phone number already registered")
			}

			return errors.Wrap(err, "create user")
		}

		created = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Account registered", slog.Int64("userID", created.ID), slog.String("role", created.Role.String()))

	return srv.issueFor(created)
}

// Login authenticates a local credential and refreshes the login stamp.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	phone := entity.NormalizePhone(input.Phone)

	user, err := srv.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "find user by phone")
	}

	if !user.HasLocalCredential() || !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domainerrors.ErrAccountInactive
	}

	srv.maybePromoteBootstrap(ctx, srv.userRepo, user)

	user.LastLoginAt = srv.now()
	user.UpdatedAt = user.LastLoginAt
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update login stamp")
	}

	return srv.issueFor(user)
}

// FederatedLogin verifies an identity-provider assertion and upserts the
// matching account. A uniqueness violation during the insert means another
// request created the account concurrently, so the lookup is retried once.
func (srv *accountService) FederatedLogin(ctx context.Context, input *usecase.FederatedLoginInput) (*usecase.AuthOutput, error) {
	assertion, err := srv.verifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Identity assertion rejected", slog.Any("error", err))

		return nil, domainerrors.ErrUnauthorized.WrapMessage("identity token could not be verified")
	}

	user, err := srv.findFederated(ctx, assertion)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "find federated user")
		}

		user, err = srv.createFederated(ctx, assertion)
		if err != nil {
			return nil, err
		}
	}

	if !user.Active {
		return nil, domainerrors.ErrAccountInactive
	}

	srv.syncFederatedIdentity(user, assertion)

	user.LastLoginAt = srv.now()
	user.UpdatedAt = user.LastLoginAt
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update federated user")
	}

	srv.log(ctx).Info("Federated login", slog.Int64("userID", user.ID), slog.String("role", user.Role.String()))

	return srv.issueFor(user)
}

// RequestReset generates a time-boxed reset code for the account. The
// response is identical whether or not the phone exists, so the endpoint
// cannot be used to probe for accounts.
func (srv *accountService) RequestReset(ctx context.Context, input *usecase.RequestResetInput) error {
	phone := entity.NormalizePhone(input.Phone)

	user, err := srv.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Info("Reset requested for unknown phone")

			return nil
		}

		return errors.Wrap(err, "find user by phone")
	}

	code, err := generateResetCode()
	if err != nil {
		return errors.Wrap(err, "generate reset code")
	}

	codeHash, err := srv.hasher.Hash(code)
	if err != nil {
		return errors.Wrap(err, "hash reset code")
	}

	now := srv.now()
	user.ResetCodeHash = codeHash
	user.ResetCodeExpiresAt = now.Add(srv.cfg.ResetCodeTTL)
	user.UpdatedAt = now
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "store reset code")
	}

	// No SMS integration yet; operators read the code from the log.
	srv.log(ctx).Info("Password reset code issued",
		slog.Int64("userID", user.ID),
		slog.String("code", code),
		slog.Time("expiresAt", user.ResetCodeExpiresAt))

	return nil
}

// ResetPassword consumes an outstanding reset code and replaces the local
// credential. The code is single-use: both reset fields are cleared on
// success.
func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return domainerrors.ErrValidationFailed.WrapMessage(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	phone := entity.NormalizePhone(input.Phone)

	user, err := srv.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrResetCodeInvalid
		}

		return errors.Wrap(err, "find user by phone")
	}

	if !user.ResetCodeValid(srv.now()) || !srv.hasher.Check(input.Code, user.ResetCodeHash) {
		return domainerrors.ErrResetCodeInvalid
	}

	hashed, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	user.PasswordHash = hashed
	user.ResetCodeHash = ""
	user.ResetCodeExpiresAt = time.Time{}
	user.UpdatedAt = srv.now()
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "update password")
	}

	srv.log(ctx).Info("Password reset completed", slog.Int64("userID", user.ID))

	return nil
}

// GetProfile returns the caller's own account.
func (srv *accountService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by id")
	}

	return user, nil
}

// UpdateProfile updates the caller-editable profile fields.
func (srv *accountService) UpdateProfile(ctx context.Context, userID int64, input *usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = strings.TrimSpace(input.DisplayName)
	user.UpdatedAt = srv.now()
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update profile")
	}

	return user, nil
}

func (srv *accountService) issueFor(user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(user.ID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}

	return &usecase.AuthOutput{Token: token, User: user}, nil
}

// findFederated prefers the email lookup when the assertion carries one, so
// an account that pre-existed federation is matched and linked rather than
// duplicated.
func (srv *accountService) findFederated(ctx context.Context, assertion *service.ExternalAssertion) (*entity.User, error) {
	if assertion.Email != "" {
		user, err := srv.userRepo.FindByEmail(ctx, assertion.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	return srv.userRepo.FindByFirebaseUID(ctx, assertion.Subject)
}

func (srv *accountService) createFederated(ctx context.Context, assertion *service.ExternalAssertion) (*entity.User, error) {
	now := srv.now()
	user := &entity.User{
		FirebaseUID: assertion.Subject,
		Email:       assertion.Email,
		DisplayName: assertion.DisplayName,
		Role:        srv.roleForEmail(assertion.Email),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := srv.userRepo.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, errors.Wrap(err, "create federated user")
	}

	// Lost a concurrent-login race; the other request's row wins.
	srv.log(ctx).Debug("Federated insert raced, retrying lookup", slog.String("subject", assertion.Subject))

	user, err = srv.findFederated(ctx, assertion)
	if err != nil {
		return nil, errors.Wrap(err, "retry federated lookup")
	}

	return user, nil
}

// syncFederatedIdentity refreshes the stored identity from a fresh
// assertion. Email is only overwritten when the assertion carries one, the
// display name only backfills an empty field, and the role moves upward
// only.
func (srv *accountService) syncFederatedIdentity(user *entity.User, assertion *service.ExternalAssertion) {
	user.FirebaseUID = assertion.Subject
	if assertion.Email != "" {
		user.Email = assertion.Email
	}
	if user.DisplayName == "" {
		user.DisplayName = assertion.DisplayName
	}
	user.Role = entity.MaxRole(user.Role, srv.roleForEmail(assertion.Email))
}

// roleForEmail derives the initial role from the configured allow-lists.
// Entries are exact addresses or "@domain" suffixes, compared
// case-insensitively.
func (srv *accountService) roleForEmail(email string) entity.Role {
	if emailMatchesList(email, srv.cfg.AdminEmails) {
		return entity.RoleAdmin
	}
	if emailMatchesList(email, srv.cfg.StaffEmails) {
		return entity.RoleStaff
	}

	return entity.RoleCustomer
}

// maybePromoteBootstrap promotes the configured bootstrap phone to admin
// when no staff or admin account exists yet. Once any elevated account
// exists the promotion can never fire again.
func (srv *accountService) maybePromoteBootstrap(ctx context.Context, userRepo repository.UserRepository, user *entity.User) {
	if srv.cfg.BootstrapPhone == "" || user.Phone != entity.NormalizePhone(srv.cfg.BootstrapPhone) {
		return
	}
	if user.Role.AtLeast(entity.RoleStaff) {
		return
	}

	count, err := userRepo.CountWithRoleAtLeast(ctx, entity.RoleStaff)
	if err != nil {
		srv.log(ctx).Error("Bootstrap promotion check failed", slog.Any("error", err))

		return
	}
	if count > 0 {
		return
	}

	user.Role = entity.RoleAdmin
	srv.log(ctx).Info("Bootstrap admin promotion applied", slog.String("phone", user.Phone))
}

func emailMatchesList(email string, list []string) bool {
	if email == "" {
		return false
	}

	lowered := strings.ToLower(email)
	for _, entry := range list {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "@") {
			if strings.HasSuffix(lowered, entry) {
				return true
			}

			continue
		}
		if lowered == entry {
			return true
		}
	}

	return false
}

// generateResetCode produces a six-digit numeric code from a CSPRNG.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "read random")
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
