package impl

import (
	"context"
	"testing"
	"time"

	"peppers/config"
	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/service"
	"peppers/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFixtures struct {
	service  usecase.AccountUsecase
	userRepo *fakeUserRepo
	verifier *fakeVerifier
	cfg      *config.Config
}

func createTestAccountService(t *testing.T) accountFixtures {
	t.Helper()

	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	verifier := &fakeVerifier{}
	cfg := newTestConfig()

	service := NewAccountService(AccountServiceParams{
		TxManager:    &fakeTxManager{userRepo: userRepo, auditRepo: auditRepo},
		UserRepo:     userRepo,
		Hasher:       fakeHasher{},
		TokenService: fakeTokenService{},
		Verifier:     verifier,
		Config:       cfg,
		Logger:       newDiscardLogger(),
	})

	return accountFixtures{service: service, userRepo: userRepo, verifier: verifier, cfg: cfg}
}

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:       "+61 400 000 001",
		Password:    "secret123",
		DisplayName: "  Pepper  ",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.Token)
	assert.Equal(t, "+61400000001", output.User.Phone, "phone should be normalized")
	assert.Equal(t, "Pepper", output.User.DisplayName)
	assert.Equal(t, entity.RoleCustomer, output.User.Role)
	assert.True(t, output.User.Active)
}

func TestAccountService_Register_DuplicatePhone(t *testing.T) {
	fx := createTestAccountService(t)

	input := &usecase.RegisterInput{Phone: "0400000001", Password: "secret123"}
	_, err := fx.service.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = fx.service.Register(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "short",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_Login_Success(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})
	require.NoError(t, err)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Phone:    "0400 000 001",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.Token)
	assert.False(t, output.User.LastLoginAt.IsZero())
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Phone:    "0400000001",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Login_UnknownPhone(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Phone:    "0499999999",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountService_Login_InactiveAccount(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})
	require.NoError(t, err)

	stored := fx.userRepo.users[output.User.ID]
	stored.Active = false

	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Phone:    "0400000001",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, domainerrors.ErrAccountInactive)
}

func TestAccountService_Register_BootstrapPromotion(t *testing.T) {
	fx := createTestAccountService(t)
	fx.cfg.Auth.BootstrapPhone = "0400 000 001"

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, output.User.Role)
}

func TestAccountService_Register_BootstrapPromotionOnlyOnce(t *testing.T) {
	fx := createTestAccountService(t)
	fx.cfg.Auth.BootstrapPhone = "0400000001"

	// An elevated account already exists, so the promotion must not fire
	// even for the configured phone.
	require.NoError(t, fx.userRepo.Create(context.Background(), &entity.User{
		Phone: "0400000009",
		Role:  entity.RoleStaff,
	}))

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, output.User.Role)
}

func TestAccountService_FederatedLogin_CreatesUser(t *testing.T) {
	fx := createTestAccountService(t)
	fx.verifier.assertion = &service.ExternalAssertion{
		Subject:     "firebase-uid-1",
		Email:       "customer@example.com",
		DisplayName: "Customer One",
	}

	output, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "valid"})

	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-1", output.User.FirebaseUID)
	assert.Equal(t, "customer@example.com", output.User.Email)
	assert.Equal(t, entity.RoleCustomer, output.User.Role)
	assert.NotEmpty(t, output.Token)
}

func TestAccountService_FederatedLogin_InvalidAssertion(t *testing.T) {
	fx := createTestAccountService(t)
	fx.verifier.err = errors.New("token expired")

	_, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "bad"})

	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAccountService_FederatedLogin_AllowListRole(t *testing.T) {
	fx := createTestAccountService(t)
	fx.cfg.Auth.AdminEmails = []string{"boss@peppers.pizza"}
	fx.cfg.Auth.StaffEmails = []string{"@peppers.pizza"}

	fx.verifier.assertion = &service.ExternalAssertion{Subject: "uid-boss", Email: "Boss@Peppers.Pizza"}
	output, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, output.User.Role)

	fx.verifier.assertion = &service.ExternalAssertion{Subject: "uid-staff", Email: "crew@peppers.pizza"}
	output, err = fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStaff, output.User.Role)
}

func TestAccountService_FederatedLogin_NeverDowngradesRole(t *testing.T) {
	fx := createTestAccountService(t)

	require.NoError(t, fx.userRepo.Create(context.Background(), &entity.User{
		Email:  "boss@example.com",
		Role:   entity.RoleAdmin,
		Active: true,
	}))

	fx.verifier.assertion = &service.ExternalAssertion{Subject: "uid-boss", Email: "boss@example.com"}
	output, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "t"})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, output.User.Role, "allow-list derived customer role must not downgrade")
	assert.Equal(t, "uid-boss", output.User.FirebaseUID, "subject should be linked on login")
}

func TestAccountService_FederatedLogin_EmailOnlyOverwrittenWhenPresent(t *testing.T) {
	fx := createTestAccountService(t)

	require.NoError(t, fx.userRepo.Create(context.Background(), &entity.User{
		FirebaseUID: "uid-1",
		Email:       "kept@example.com",
		DisplayName: "Kept Name",
		Role:        entity.RoleCustomer,
		Active:      true,
	}))

	// Assertion without email: lookup falls back to the subject and the
	// stored email survives.
	fx.verifier.assertion = &service.ExternalAssertion{Subject: "uid-1", DisplayName: "New Name"}
	output, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "t"})

	require.NoError(t, err)
	assert.Equal(t, "kept@example.com", output.User.Email)
	assert.Equal(t, "Kept Name", output.User.DisplayName, "display name only backfills when empty")
}

func TestAccountService_FederatedLogin_RetriesOnInsertRace(t *testing.T) {
	fx := createTestAccountService(t)

	// The winning row from the concurrent request.
	require.NoError(t, fx.userRepo.Create(context.Background(), &entity.User{
		FirebaseUID: "uid-race",
		Role:        entity.RoleCustomer,
		Active:      true,
	}))

	// No email on the assertion, so the first lookup misses and the create
	// collides with the existing subject.
	fx.verifier.assertion = &service.ExternalAssertion{Subject: "uid-race"}
	output, err := fx.service.FederatedLogin(context.Background(), &usecase.FederatedLoginInput{IDToken: "t"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), output.User.ID, "the pre-existing row wins the race")
	assert.Len(t, fx.userRepo.users, 1)
}

func TestAccountService_ResetFlow(t *testing.T) {
	fx := createTestAccountService(t)

	registered, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "original1",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.RequestReset(context.Background(), &usecase.RequestResetInput{Phone: "0400000001"}))

	stored := fx.userRepo.users[registered.User.ID]
	require.NotEmpty(t, stored.ResetCodeHash)

	// The fake hasher exposes the code for the test.
	code := stored.ResetCodeHash[len("hashed:"):]

	err = fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Phone:       "0400000001",
		Code:        code,
		NewPassword: "replaced1",
	})
	require.NoError(t, err)

	// Old password no longer works, new one does, code is consumed.
	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{Phone: "0400000001", Password: "original1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{Phone: "0400000001", Password: "replaced1"})
	assert.NoError(t, err)

	err = fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Phone:       "0400000001",
		Code:        code,
		NewPassword: "replaced2",
	})
	assert.ErrorIs(t, err, domainerrors.ErrResetCodeInvalid)
}

func TestAccountService_ResetPassword_ExpiredCode(t *testing.T) {
	fx := createTestAccountService(t)

	registered, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "original1",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.RequestReset(context.Background(), &usecase.RequestResetInput{Phone: "0400000001"}))

	stored := fx.userRepo.users[registered.User.ID]
	code := stored.ResetCodeHash[len("hashed:"):]
	stored.ResetCodeExpiresAt = time.Now().Add(-time.Minute)

	err = fx.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Phone:       "0400000001",
		Code:        code,
		NewPassword: "replaced1",
	})

	assert.ErrorIs(t, err, domainerrors.ErrResetCodeInvalid)
}

func TestAccountService_RequestReset_UnknownPhoneIsSilent(t *testing.T) {
	fx := createTestAccountService(t)

	err := fx.service.RequestReset(context.Background(), &usecase.RequestResetInput{Phone: "0499999999"})

	assert.NoError(t, err, "unknown phone must not be distinguishable")
}

func TestAccountService_UpdateProfile(t *testing.T) {
	fx := createTestAccountService(t)

	registered, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Phone:    "0400000001",
		Password: "secret123",
	})
	require.NoError(t, err)

	updated, err := fx.service.UpdateProfile(context.Background(), registered.User.ID, &usecase.UpdateProfileInput{
		DisplayName: "New Name",
	})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.DisplayName)
}
