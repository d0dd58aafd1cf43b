package postgres

import (
	"context"
	"time"

	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/repository"
	"peppers/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByPhone retrieves a single user by their normalized phone number.
func (repo *userRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return repo.findOne(ctx, "phone = ?", phone)
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

// FindByFirebaseUID retrieves a single user by their external subject id.
func (repo *userRepository) FindByFirebaseUID(ctx context.Context, uid string) (*entity.User, error) {
	return repo.findOne(ctx, "firebase_uid = ?", uid)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where(query, arg).First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// ListRecent returns the most recently created users, newest first.
func (repo *userRepository) ListRecent(ctx context.Context, limit int) ([]*entity.User, error) {
	var models []model.UserModel
	err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(models))
	for i := range models {
		users = append(users, toUserDomain(&models[i]))
	}

	return users, nil
}

// CountWithRoleAtLeast counts users whose role ranks at or above the given role.
func (repo *userRepository) CountWithRoleAtLeast(ctx context.Context, role entity.Role) (int64, error) {
	elevated := make([]string, 0, 3)
	for _, candidate := range []entity.Role{entity.RoleCustomer, entity.RoleStaff, entity.RoleAdmin} {
		if candidate.AtLeast(role) {
			elevated = append(elevated, candidate.String())
		}
	}

	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("role IN ?", elevated).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count users by role")
	}

	return count, nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicate
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicate
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:            data.ID,
		PasswordHash:  data.PasswordHash,
		DisplayName:   data.DisplayName,
		Role:          entity.Role(data.Role),
		Active:        data.Active,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
		ResetCodeHash: data.ResetCodeHash,
	}
	if data.Phone != nil {
		user.Phone = *data.Phone
	}
	if data.FirebaseUID != nil {
		user.FirebaseUID = *data.FirebaseUID
	}
	if data.Email != nil {
		user.Email = *data.Email
	}
	if data.LastLoginAt != nil {
		user.LastLoginAt = *data.LastLoginAt
	}
	if data.ResetCodeExpiresAt != nil {
		user.ResetCodeExpiresAt = *data.ResetCodeExpiresAt
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
// Empty identity fields map to NULL so the partial unique indexes apply only
// to populated values.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:            data.ID,
		PasswordHash:  data.PasswordHash,
		DisplayName:   data.DisplayName,
		Role:          data.Role.String(),
		Active:        data.Active,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
		ResetCodeHash: data.ResetCodeHash,
	}
	userM.Phone = nullableString(data.Phone)
	userM.FirebaseUID = nullableString(data.FirebaseUID)
	userM.Email = nullableString(data.Email)
	userM.LastLoginAt = nullableTime(data.LastLoginAt)
	userM.ResetCodeExpiresAt = nullableTime(data.ResetCodeExpiresAt)

	return userM
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
