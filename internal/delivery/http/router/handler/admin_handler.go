package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "peppers/internal/delivery/context"
	"peppers/internal/delivery/http/response"
	"peppers/internal/domain/entity"
	"peppers/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for account administration handlers.
type AdminHandler struct {
	uc     usecase.AdminUsecase
	logger *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AdminUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListUsers returns the most recently created accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, err := h.uc.ListUsers(c.Request().Context(), limit)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, viewOf(user))
	}

	return response.Success(c, http.StatusOK, views, "")
}

type updateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
	Active      *bool   `json:"active"`
}

// UpdateUser applies a partial update to the target account.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	actor := deliverycontext.GetUser(c)
	if actor == nil {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid update input")
	}

	input := &usecase.UpdateUserInput{
		DisplayName: req.DisplayName,
		Active:      req.Active,
	}
	if req.Role != nil {
		role, ok := entity.ParseRole(*req.Role)
		if !ok {
			return response.BindingError(c, "INVALID_INPUT", "Unknown role")
		}
		input.Role = &role
	}

	user, err := h.uc.UpdateUser(c.Request().Context(), actor, targetID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, viewOf(user), "User updated")
}

type setPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// SetPassword replaces a user's local credential.
func (h *AdminHandler) SetPassword(c echo.Context) error {
	actor := deliverycontext.GetUser(c)
	if actor == nil {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user id")
	}

	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.SetPassword(c.Request().Context(), actor, targetID, &usecase.SetPasswordInput{Password: req.Password}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password updated")
}

type bootstrapRequest struct {
	SetupKey string `json:"setupKey" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

// Bootstrap promotes the first admin with the out-of-band setup key.
func (h *AdminHandler) Bootstrap(c echo.Context) error {
	var req bootstrapRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid bootstrap input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.uc.Bootstrap(c.Request().Context(), &usecase.BootstrapInput{
		SetupKey: req.SetupKey,
		Phone:    req.Phone,
	}, c.RealIP())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, viewOf(user), "Admin bootstrap completed")
}
