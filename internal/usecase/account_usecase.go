// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"peppers/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a local account.
type RegisterInput struct {
	Phone       string
	Password    string
	DisplayName string
}

// LoginInput defines the data required for a phone/password login.
type LoginInput struct {
	Phone    string
	Password string
}

// FederatedLoginInput carries the raw identity-provider assertion.
type FederatedLoginInput struct {
	IDToken string
}

// RequestResetInput starts the password-reset flow for a phone number.
type RequestResetInput struct {
	Phone string
}

// ResetPasswordInput completes the password-reset flow.
type ResetPasswordInput struct {
	Phone       string
	Code        string
	NewPassword string
}

// UpdateProfileInput carries the caller-editable profile fields.
type UpdateProfileInput struct {
	DisplayName string
}

// --- Output DTOs ---

// AuthOutput returns the signed token and the authenticated user.
type AuthOutput struct {
	Token string
	User  *entity.User
}

// AccountUsecase defines the contract the delivery layer depends on for
// registration, login, federation, and self-service profile operations.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	FederatedLogin(ctx context.Context, input *FederatedLoginInput) (*AuthOutput, error)
	RequestReset(ctx context.Context, input *RequestResetInput) error
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
	GetProfile(ctx context.Context, userID int64) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID int64, input *UpdateProfileInput) (*entity.User, error)
}
