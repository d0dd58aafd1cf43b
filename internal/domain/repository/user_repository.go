// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"peppers/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint on phone, email or firebase uid. The federation path treats it
// as a recoverable race and retries its lookup.
var ErrDuplicate = errors.New("duplicate phone or email")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByPhone retrieves a single user by their normalized phone number.
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByFirebaseUID retrieves a single user by their external subject id.
	FindByFirebaseUID(ctx context.Context, uid string) (*entity.User, error)

	// ListRecent returns the most recently created users, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.User, error)

	// CountWithRoleAtLeast counts users whose role ranks at or above the
	// given role. Used by the bootstrap promotion guard.
	CountWithRoleAtLeast(ctx context.Context, role entity.Role) (int64, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error
}
