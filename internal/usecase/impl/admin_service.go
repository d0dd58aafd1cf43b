package impl

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
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

const defaultListLimit = 100

// adminService implements the AdminUsecase interface.
type adminService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	hasher    service.PasswordHasher
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// AdminServiceParams holds dependencies for adminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	UserRepo  repository.UserRepository
	AuditRepo repository.AuditRepository
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		userRepo:  params.UserRepo,
		auditRepo: params.AuditRepo,
		hasher:    params.Hasher,
		cfg:       params.Config,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListUsers returns the most recently created accounts, newest first.
func (srv *adminService) ListUsers(ctx context.Context, limit int) ([]*entity.User, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	users, err := srv.userRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	return users, nil
}

// UpdateUser applies a partial update to the target account. Role changes
// require an admin actor; display name and activation changes are open to
// staff.
func (srv *adminService) UpdateUser(ctx context.Context, actor *entity.User, targetID int64, input *usecase.UpdateUserInput) (*entity.User, error) {
	user, err := srv.findTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var changes []string

	if input.DisplayName != nil && *input.DisplayName != user.DisplayName {
		user.DisplayName = *input.DisplayName
		changes = append(changes, "displayName")
	}
	if input.Active != nil && *input.Active != user.Active {
		user.Active = *input.Active
		changes = append(changes, fmt.Sprintf("active=%t", user.Active))
	}
	if input.Role != nil && *input.Role != user.Role {
		if !actor.Role.AtLeast(entity.RoleAdmin) {
			return nil, domainerrors.ErrForbidden.WrapMessage("only admins may change roles")
		}
		if !input.Role.IsValid() {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown role")
		}
		changes = append(changes, fmt.Sprintf("role %s -> %s", user.Role, *input.Role))
		user.Role = *input.Role
	}

	if len(changes) == 0 {
		return user, nil
	}

	user.UpdatedAt = srv.now()
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update user")
	}

	srv.writeAudit(ctx, actor.ID, user.ID, "admin.user.update", fmt.Sprintf("%v", changes))

	return user, nil
}

// SetPassword replaces the target's local credential.
func (srv *adminService) SetPassword(ctx context.Context, actor *entity.User, targetID int64, input *usecase.SetPasswordInput) error {
	if len(input.Password) < minPasswordLength {
		return domainerrors.ErrValidationFailed.WrapMessage(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := srv.findTarget(ctx, targetID)
	if err != nil {
		return err
	}

	hashed, err := srv.hasher.Hash(input.Password)
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

	srv.writeAudit(ctx, actor.ID, user.ID, "admin.user.set_password", "local credential replaced")

	return nil
}

// Bootstrap promotes the account with the given phone to admin. The
// endpoint only works outside production, with the configured setup key,
// and while no staff or admin account exists yet.
func (srv *adminService) Bootstrap(ctx context.Context, input *usecase.BootstrapInput, clientIP string) (*entity.User, error) {
	if srv.cfg.IsProduction() {
		return nil, domainerrors.ErrBootstrapUnavailable
	}
	setupKey := srv.cfg.Auth.SetupKey
	if setupKey == "" || subtle.ConstantTimeCompare([]byte(setupKey), []byte(input.SetupKey)) != 1 {
		return nil, domainerrors.ErrBootstrapUnavailable
	}

	elevated, err := srv.userRepo.CountWithRoleAtLeast(ctx, entity.RoleStaff)
	if err != nil {
		return nil, errors.Wrap(err, "count elevated users")
	}
	if elevated > 0 {
		return nil, domainerrors.ErrBootstrapUnavailable.WrapMessage("an elevated account already exists")
	}

	user, err := srv.userRepo.FindByPhone(ctx, entity.NormalizePhone(input.Phone))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by phone")
	}

	user.Role = entity.RoleAdmin
	user.UpdatedAt = srv.now()
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "promote user")
	}

	entry := entity.NewAuditEntry(user.ID, user.ID, "admin.bootstrap", "setup-key admin promotion", clientIP)
	if err := srv.auditRepo.Create(ctx, entry); err != nil {
		srv.log(ctx).Error("Failed to write audit entry", slog.String("action", entry.Action), slog.Any("error", err))
	}

	srv.log(ctx).Warn("Bootstrap promotion via setup key", slog.Int64("userID", user.ID), slog.String("clientIP", clientIP))

	return user, nil
}

func (srv *adminService) findTarget(ctx context.Context, targetID int64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by id")
	}

	return user, nil
}

// writeAudit records a privileged mutation. Audit writes are best-effort:
// a failure is logged and never undoes the mutation it describes.
func (srv *adminService) writeAudit(ctx context.Context, actorID, targetID int64, action, detail string) {
	entry := entity.NewAuditEntry(actorID, targetID, action, detail, deliverycontext.GetClientIP(ctx))
	if err := srv.auditRepo.Create(ctx, entry); err != nil {
		srv.log(ctx).Error("Failed to write audit entry", slog.String("action", action), slog.Any("error", err))
	}
}
