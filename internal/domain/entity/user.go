package entity

import "time"

// User is the core identity in the system. A user carries at most one local
// credential (normalized phone number plus bcrypt password hash) and at most
// one federated identity (Firebase subject id plus email); at least one of
// the two is populated once the account exists.
//
// Users are never hard-deleted: deactivation flips Active, which the auth
// middleware checks on every request.
type User struct {
	ID           int64     // Numeric primary key, assigned by the database at creation.
	Phone        string    // Normalized phone number; empty when the account is federation-only.
	PasswordHash string    // bcrypt hash of the local password; empty when federation-only.
	FirebaseUID  string    // Subject id asserted by the external identity provider.
	Email        string    // Email from the federated assertion; unique when present.
	DisplayName  string    // Free-form display name.
	Role         Role      // Access level; monotonically non-decreasing under federation.
	Active       bool      // Deactivated users fail authentication even with a valid token.
	CreatedAt    time.Time // Timestamp of account creation.
	UpdatedAt    time.Time // Timestamp of the last mutation.
	LastLoginAt  time.Time // Timestamp of the last successful authentication.

	// Time-boxed password-reset credential. Both fields are cleared once
	// the code is consumed.
	ResetCodeHash      string
	ResetCodeExpiresAt time.Time
}

// HasLocalCredential reports whether the user can log in with phone+password.
func (u *User) HasLocalCredential() bool {
	return u.Phone != "" && u.PasswordHash != ""
}

// ResetCodeValid reports whether a reset code is outstanding and unexpired.
func (u *User) ResetCodeValid(now time.Time) bool {
	return u.ResetCodeHash != "" && now.Before(u.ResetCodeExpiresAt)
}
