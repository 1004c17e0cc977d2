// Package auth implements the password hashing and token domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"unicode"

	"fintracker/config"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize       = 16
	keySize        = 32
	hashSeparator  = "."
	minIterations  = 1000
	fallbackMinLen = 6
)

// pbkdf2Hasher stores passwords as base64(salt) + "." + base64(PBKDF2-HMAC-SHA256 key).
type pbkdf2Hasher struct {
	iterations int
	policy     config.PasswordStrengthConfig
}

// NewPBKDF2Hasher builds the hasher from the auth and password strength sections.
func NewPBKDF2Hasher(cfg *config.Config) service.PasswordHasher {
	h := &pbkdf2Hasher{iterations: 10000, policy: config.PasswordStrengthConfig{MinLength: fallbackMinLen}}
	if cfg.Auth != nil && cfg.Auth.PBKDF2Iterations >= minIterations {
		h.iterations = cfg.Auth.PBKDF2Iterations
	}
	if cfg.PasswordStrength != nil {
		h.policy = *cfg.PasswordStrength
	}

	return h
}

func (h *pbkdf2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "read salt")
	}

	key := h.derive(password, salt)

	return base64.StdEncoding.EncodeToString(salt) + hashSeparator + base64.StdEncoding.EncodeToString(key), nil
}

func (h *pbkdf2Hasher) Verify(password, hash string) bool {
	saltPart, keyPart, ok := strings.Cut(hash, hashSeparator)
	if !ok || saltPart == "" || keyPart == "" {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil || len(stored) != keySize {
		return false
	}

	return subtle.ConstantTimeCompare(h.derive(password, salt), stored) == 1
}

func (h *pbkdf2Hasher) ValidatePasswordStrength(password string) error {
	p := h.policy
	length := len([]rune(password))

	if p.MinLength > 0 && length < p.MinLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password is too short")
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password is too long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case p.RequireUppercase && !upper:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs an uppercase letter")
	case p.RequireLowercase && !lower:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a lowercase letter")
	case p.RequireNumbers && !digit:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a digit")
	case p.RequireSpecial && !special:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a special character")
	}

	return nil
}

func (h *pbkdf2Hasher) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.iterations, keySize, sha256.New)
}
