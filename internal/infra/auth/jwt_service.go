// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"peppers/config"
	"peppers/internal/domain/entity"
	"peppers/internal/domain/service"
)

// tokenSalt is a fixed domain-separation salt appended to the signing
// secret, so tokens issued here never verify against other uses of the
// same application secret.
const tokenSalt = "peppers.bearer.v1"

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	signingKey []byte
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Token == "" {
		return nil, errors.New("token secret must be provided")
	}

	return &jwtService{
		signingKey: []byte(cfg.SecretKey.Token + tokenSalt),
	}, nil
}

// Issue creates a signed HS256 token carrying subject, role and issuance time.
func (s *jwtService) Issue(userID int64, role entity.Role) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role.String(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify validates the token signature and age. Every failure mode collapses
// into service.ErrTokenInvalid; callers never see parser internals.
func (s *jwtService) Verify(tokenString string, maxAge time.Duration) (*service.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, service.ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, service.ErrTokenInvalid
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, service.ErrTokenInvalid
	}

	roleStr, ok := mapClaims["role"].(string)
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	role, ok := entity.ParseRole(roleStr)
	if !ok {
		return nil, service.ErrTokenInvalid
	}

	iatSeconds, ok := mapClaims["iat"].(float64)
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	issuedAt := time.Unix(int64(iatSeconds), 0)

	// The age boundary is exclusive: a token aged exactly maxAge is expired.
	if time.Since(issuedAt) >= maxAge {
		return nil, service.ErrTokenInvalid
	}

	return &service.Claims{
		UserID:   userID,
		Role:     role,
		IssuedAt: issuedAt,
	}, nil
}
