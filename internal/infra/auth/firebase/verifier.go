// Package firebase verifies ID tokens issued by Firebase Authentication.
package firebase

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"peppers/config"
	"peppers/internal/domain/service"
)

// verifier implements service.IdentityVerifier on top of the Firebase Auth
// client, which checks the token signature, audience and expiry against the
// project's public keys.
type verifier struct {
	client *fbauth.Client
	logger *slog.Logger
}

// NewVerifier creates an IdentityVerifier for the configured Firebase project.
func NewVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.IdentityVerifier, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auth client")
	}

	return &verifier{client: client, logger: logger}, nil
}

// VerifyIDToken validates the ID token and extracts the asserted identity.
func (v *verifier) VerifyIDToken(ctx context.Context, idToken string) (*service.ExternalAssertion, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		v.logger.Warn("Firebase ID token verification failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	assertion := &service.ExternalAssertion{Subject: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		assertion.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		assertion.DisplayName = name
	}

	v.logger.Info("Firebase ID token verified",
		slog.String("subject", assertion.Subject),
		slog.String("email", assertion.Email))

	return assertion, nil
}
