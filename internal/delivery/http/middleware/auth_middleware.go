package middleware

import (
	"strings"

	"peppers/config"
	deliverycontext "peppers/internal/delivery/context"
	"peppers/internal/delivery/http/response"
	"peppers/internal/domain/entity"
	"peppers/internal/domain/repository"
	"peppers/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware validates bearer tokens and loads the authenticated user.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	userRepo repository.UserRepository
	cfg      *config.Config
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, userRepo repository.UserRepository, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo, cfg: cfg}
}

// Authenticate validates the bearer token, loads the user it names, and
// binds the user into the request context. Deactivated accounts fail here
// even when their token is still cryptographically valid.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.Verify(tokenString, m.cfg.Auth.TokenMaxAge)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired token")
		}

		user, err := m.userRepo.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired token")
		}
		if !user.Active {
			return response.Unauthorized(c, "ACCOUNT_INACTIVE", "This account has been deactivated")
		}

		deliverycontext.SetUser(c, user)

		return next(c)
	}
}

// RequireStaff rejects callers below staff rank. It must be used AFTER the
// Authenticate middleware.
func (m *AuthMiddleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := deliverycontext.GetUser(c)
		if user == nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
		}
		if !user.Role.AtLeast(entity.RoleStaff) {
			return response.Forbidden(c, "FORBIDDEN", "Staff access required")
		}

		return next(c)
	}
}
