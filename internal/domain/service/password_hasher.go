// Package service defines stateless domain collaborators implemented in infra.
package service

// PasswordHasher turns plaintext passwords into salted hashes and checks them.
type PasswordHasher interface {
	// Hash derives a fresh salted hash. Two calls with the same password
	// return different strings.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash is a mismatch.
	Verify(password, hash string) bool

	// ValidatePasswordStrength rejects passwords outside the configured policy.
	ValidatePasswordStrength(password string) error
}
