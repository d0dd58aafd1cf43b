// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "peppers/internal/delivery/context"
	"peppers/internal/delivery/http/response"
	"peppers/internal/domain/entity"
	"peppers/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// userView is the serializable projection of a user. Credential material
// never leaves the service.
type userView struct {
	ID          int64     `json:"id"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt,omitzero"`
}

func viewOf(user *entity.User) userView {
	return userView{
		ID:          user.ID,
		Phone:       user.Phone,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role.String(),
		Active:      user.Active,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

type authView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName"`
}

// Register handles the local account registration request.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Phone:       req.Phone,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, authView{Token: output.Token, User: viewOf(output.User)}, "Account registered")
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles the phone/password login request.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authView{Token: output.Token, User: viewOf(output.User)}, "Login successful")
}

type federatedLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FederatedLogin handles login with an identity-provider ID token.
func (h *AccountHandler) FederatedLogin(c echo.Context) error {
	var req federatedLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid federated login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.FederatedLogin(c.Request().Context(), &usecase.FederatedLoginInput{IDToken: req.IDToken})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authView{Token: output.Token, User: viewOf(output.User)}, "Login successful")
}

type requestResetRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// RequestReset starts the password-reset flow. The response never reveals
// whether the phone belongs to an account.
func (h *AccountHandler) RequestReset(c echo.Context) error {
	var req requestResetRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset request input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.RequestReset(c.Request().Context(), &usecase.RequestResetInput{Phone: req.Phone}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "If the phone is registered, a reset code has been issued")
}

type resetPasswordRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ResetPassword completes the password-reset flow.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.uc.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Phone:       req.Phone,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password has been reset")
}

// GetMe returns the authenticated caller's profile.
func (h *AccountHandler) GetMe(c echo.Context) error {
	user := deliverycontext.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, viewOf(profile), "")
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=120"`
}

// UpdateMe updates the authenticated caller's profile.
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	user := deliverycontext.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.uc.UpdateProfile(c.Request().Context(), user.ID, &usecase.UpdateProfileInput{DisplayName: req.DisplayName})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, viewOf(profile), "Profile updated")
}
