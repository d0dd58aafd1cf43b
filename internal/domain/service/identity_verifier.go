package service

import "context"

// ExternalAssertion is the identity claim produced by verifying a token
// from the external identity provider.
type ExternalAssertion struct {
	Subject     string // Provider-unique subject id.
	Email       string // May be empty for phone-only provider accounts.
	DisplayName string
}

// IdentityVerifier verifies an ID token issued by the external identity
// provider and extracts the asserted identity.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*ExternalAssertion, error)
}
