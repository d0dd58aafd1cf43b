package service

// PasswordHasher abstracts the salted hashing of local credentials and
// reset codes.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext secret.
	Hash(password string) (string, error)

	// Check compares a plaintext secret with a stored hash.
	Check(password, hash string) bool
}
