package impl

import (
	"context"
	"testing"

	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixtures struct {
	service   usecase.AdminUsecase
	userRepo  *fakeUserRepo
	auditRepo *fakeAuditRepo
	admin     *entity.User
	staff     *entity.User
	customer  *entity.User
}

func createTestAdminService(t *testing.T) adminFixtures {
	t.Helper()

	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	cfg := newTestConfig()
	cfg.Env.Env = "develop"
	cfg.Auth.SetupKey = "setup-key"

	service := NewAdminService(AdminServiceParams{
		UserRepo:  userRepo,
		AuditRepo: auditRepo,
		Hasher:    fakeHasher{},
		Config:    cfg,
		Logger:    newDiscardLogger(),
	})

	ctx := context.Background()
	admin := &entity.User{Phone: "0400000001", Role: entity.RoleAdmin, Active: true}
	staff := &entity.User{Phone: "0400000002", Role: entity.RoleStaff, Active: true}
	customer := &entity.User{Phone: "0400000003", Role: entity.RoleCustomer, Active: true}
	require.NoError(t, userRepo.Create(ctx, admin))
	require.NoError(t, userRepo.Create(ctx, staff))
	require.NoError(t, userRepo.Create(ctx, customer))

	return adminFixtures{
		service:   service,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		admin:     admin,
		staff:     staff,
		customer:  customer,
	}
}

func TestAdminService_ListUsers(t *testing.T) {
	fx := createTestAdminService(t)

	users, err := fx.service.ListUsers(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestAdminService_UpdateUser_StaffMayToggleActive(t *testing.T) {
	fx := createTestAdminService(t)

	active := false
	updated, err := fx.service.UpdateUser(context.Background(), fx.staff, fx.customer.ID, &usecase.UpdateUserInput{
		Active: &active,
	})

	require.NoError(t, err)
	assert.False(t, updated.Active)
	require.Len(t, fx.auditRepo.entries, 1)
	assert.Equal(t, "admin.user.update", fx.auditRepo.entries[0].Action)
	assert.Equal(t, fx.staff.ID, fx.auditRepo.entries[0].ActorID)
	assert.Equal(t, fx.customer.ID, fx.auditRepo.entries[0].TargetID)
}

func TestAdminService_UpdateUser_RoleChangeRequiresAdmin(t *testing.T) {
	fx := createTestAdminService(t)

	role := entity.RoleStaff
	_, err := fx.service.UpdateUser(context.Background(), fx.staff, fx.customer.ID, &usecase.UpdateUserInput{
		Role: &role,
	})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	updated, err := fx.service.UpdateUser(context.Background(), fx.admin, fx.customer.ID, &usecase.UpdateUserInput{
		Role: &role,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStaff, updated.Role)
}

func TestAdminService_UpdateUser_NoChangesSkipsAudit(t *testing.T) {
	fx := createTestAdminService(t)

	_, err := fx.service.UpdateUser(context.Background(), fx.admin, fx.customer.ID, &usecase.UpdateUserInput{})

	require.NoError(t, err)
	assert.Empty(t, fx.auditRepo.entries)
}

func TestAdminService_UpdateUser_TargetNotFound(t *testing.T) {
	fx := createTestAdminService(t)

	_, err := fx.service.UpdateUser(context.Background(), fx.admin, 9999, &usecase.UpdateUserInput{})

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAdminService_SetPassword(t *testing.T) {
	fx := createTestAdminService(t)

	err := fx.service.SetPassword(context.Background(), fx.staff, fx.customer.ID, &usecase.SetPasswordInput{
		Password: "replacement1",
	})

	require.NoError(t, err)
	stored := fx.userRepo.users[fx.customer.ID]
	assert.Equal(t, "hashed:replacement1", stored.PasswordHash)
	assert.Empty(t, stored.ResetCodeHash, "outstanding reset codes are revoked")
	require.Len(t, fx.auditRepo.entries, 1)
	assert.Equal(t, "admin.user.set_password", fx.auditRepo.entries[0].Action)
}

func TestAdminService_SetPassword_TooShort(t *testing.T) {
	fx := createTestAdminService(t)

	err := fx.service.SetPassword(context.Background(), fx.staff, fx.customer.ID, &usecase.SetPasswordInput{
		Password: "tiny",
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAdminService_Bootstrap_RefusedWhileElevatedAccountExists(t *testing.T) {
	fx := createTestAdminService(t)

	_, err := fx.service.Bootstrap(context.Background(), &usecase.BootstrapInput{
		SetupKey: "setup-key",
		Phone:    fx.customer.Phone,
	}, "127.0.0.1")

	assert.ErrorIs(t, err, domainerrors.ErrBootstrapUnavailable)
}

func TestAdminService_Bootstrap_Success(t *testing.T) {
	fx := createTestAdminService(t)

	// Only non-elevated accounts remain.
	delete(fx.userRepo.users, fx.admin.ID)
	delete(fx.userRepo.users, fx.staff.ID)

	user, err := fx.service.Bootstrap(context.Background(), &usecase.BootstrapInput{
		SetupKey: "setup-key",
		Phone:    fx.customer.Phone,
	}, "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	require.Len(t, fx.auditRepo.entries, 1)
	assert.Equal(t, "admin.bootstrap", fx.auditRepo.entries[0].Action)
	assert.Equal(t, "127.0.0.1", fx.auditRepo.entries[0].ClientIP)
}

func TestAdminService_Bootstrap_WrongKey(t *testing.T) {
	fx := createTestAdminService(t)
	delete(fx.userRepo.users, fx.admin.ID)
	delete(fx.userRepo.users, fx.staff.ID)

	_, err := fx.service.Bootstrap(context.Background(), &usecase.BootstrapInput{
		SetupKey: "wrong",
		Phone:    fx.customer.Phone,
	}, "127.0.0.1")

	assert.ErrorIs(t, err, domainerrors.ErrBootstrapUnavailable)
}

func TestAdminService_Bootstrap_RefusedInProduction(t *testing.T) {
	userRepo := newFakeUserRepo()
	cfg := newTestConfig()
	cfg.Env.Env = "production"
	cfg.Auth.SetupKey = "setup-key"

	service := NewAdminService(AdminServiceParams{
		UserRepo:  userRepo,
		AuditRepo: &fakeAuditRepo{},
		Hasher:    fakeHasher{},
		Config:    cfg,
		Logger:    newDiscardLogger(),
	})

	_, err := service.Bootstrap(context.Background(), &usecase.BootstrapInput{
		SetupKey: "setup-key",
		Phone:    "0400000001",
	}, "127.0.0.1")

	assert.ErrorIs(t, err, domainerrors.ErrBootstrapUnavailable)
}

func TestAdminService_AuditFailureDoesNotRollBack(t *testing.T) {
	fx := createTestAdminService(t)
	fx.auditRepo.createErr = assert.AnError

	active := false
	updated, err := fx.service.UpdateUser(context.Background(), fx.admin, fx.customer.ID, &usecase.UpdateUserInput{
		Active: &active,
	})

	require.NoError(t, err, "audit write failure must not fail the mutation")
	assert.False(t, updated.Active)
	assert.False(t, fx.userRepo.users[fx.customer.ID].Active)
}
