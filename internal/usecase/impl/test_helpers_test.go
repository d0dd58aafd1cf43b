package impl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"peppers/config"
	"peppers/internal/domain/entity"
	"peppers/internal/domain/repository"
	"peppers/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			TokenMaxAge:  time.Hour,
			ResetCodeTTL: 15 * time.Minute,
		},
		RateLimit: &config.RateLimitConfig{Limit: 10, Window: time.Minute},
	}
}

// fakeUserRepo is an in-memory UserRepository with the same uniqueness
// semantics as the postgres implementation.
type fakeUserRepo struct {
	users  map[int64]*entity.User
	nextID int64

	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*entity.User), nextID: 1}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	if user, ok := r.users[id]; ok {
		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return phone != "" && u.Phone == phone })
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return email != "" && u.Email == email })
}

func (r *fakeUserRepo) FindByFirebaseUID(_ context.Context, uid string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return uid != "" && u.FirebaseUID == uid })
}

func (r *fakeUserRepo) findBy(match func(*entity.User) bool) (*entity.User, error) {
	for _, user := range r.users {
		if match(user) {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ListRecent(_ context.Context, limit int) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		users = append(users, &clone)
		if len(users) == limit {
			break
		}
	}

	return users, nil
}

func (r *fakeUserRepo) CountWithRoleAtLeast(_ context.Context, role entity.Role) (int64, error) {
	var count int64
	for _, user := range r.users {
		if user.Role.AtLeast(role) {
			count++
		}
	}

	return count, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if (user.Phone != "" && existing.Phone == user.Phone) ||
			(user.Email != "" && existing.Email == user.Email) ||
			(user.FirebaseUID != "" && existing.FirebaseUID == user.FirebaseUID) {
			return repository.ErrDuplicate
		}
	}

	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}

	clone := *user
	r.users[user.ID] = &clone

	return nil
}

type fakeAuditRepo struct {
	entries   []*entity.AuditEntry
	createErr error
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *entity.AuditEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, entry)

	return nil
}

// fakeTxManager runs the unit of work directly against the fakes.
type fakeTxManager struct {
	userRepo  *fakeUserRepo
	auditRepo *fakeAuditRepo
}

type fakeRepoFactory struct {
	userRepo  *fakeUserRepo
	auditRepo *fakeAuditRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository   { return f.userRepo }
func (f *fakeRepoFactory) AuditRepo() repository.AuditRepository { return f.auditRepo }

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeRepoFactory{userRepo: m.userRepo, auditRepo: m.auditRepo})
}

// fakeHasher hashes by prefixing, so tests can assert on stored values.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Check(password, hash string) bool     { return "hashed:"+password == hash }

// fakeTokenService issues predictable tokens.
type fakeTokenService struct{}

func (fakeTokenService) Issue(userID int64, role entity.Role) (string, error) {
	return "token-" + strconv.FormatInt(userID, 10) + "-" + role.String(), nil
}

func (fakeTokenService) Verify(string, time.Duration) (*service.Claims, error) {
	return nil, service.ErrTokenInvalid
}

// fakeVerifier returns a canned assertion, or an error.
type fakeVerifier struct {
	assertion *service.ExternalAssertion
	err       error
}

func (v *fakeVerifier) VerifyIDToken(context.Context, string) (*service.ExternalAssertion, error) {
	if v.err != nil {
		return nil, v.err
	}

	return v.assertion, nil
}
