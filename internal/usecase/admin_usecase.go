package usecase

import (
	"context"

	"peppers/internal/domain/entity"
)

// UpdateUserInput applies a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	DisplayName *string
	Role        *entity.Role
	Active      *bool
}

// SetPasswordInput replaces a user's local credential.
type SetPasswordInput struct {
	Password string
}

// BootstrapInput authorizes the out-of-band first-admin promotion.
type BootstrapInput struct {
	SetupKey string
	Phone    string
}

// AdminUsecase defines staff-facing account administration. The caller's
// identity is read from the request context for permission checks and audit
// attribution.
type AdminUsecase interface {
	ListUsers(ctx context.Context, limit int) ([]*entity.User, error)
	UpdateUser(ctx context.Context, actor *entity.User, targetID int64, input *UpdateUserInput) (*entity.User, error)
	SetPassword(ctx context.Context, actor *entity.User, targetID int64, input *SetPasswordInput) error
	Bootstrap(ctx context.Context, input *BootstrapInput, clientIP string) (*entity.User, error)
}
