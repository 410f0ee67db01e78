package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPassword is accepted only while an admin's stored credential is
	// still the unhashed bootstrap value. The first successful login replaces it.
	DefaultPassword = "admin123"

	MinPasswordLength = 8

	bcryptPrefix = "$2"
)

// HashPassword returns a salted bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether stored is a bcrypt hash of password.
// A stored value that is not a hash yields false.
func VerifyPassword(password, stored string) bool {
	if !IsPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// IsPasswordHash reports whether stored is in hash format. The prefix alone
// decides: a damaged hash still counts as hashed and never matches.
func IsPasswordHash(stored string) bool {
	return strings.HasPrefix(stored, bcryptPrefix)
}

type CredentialKind int

const (
	// CredentialLegacy is an unhashed bootstrap value.
	CredentialLegacy CredentialKind = iota
	// CredentialHashed is a bcrypt hash.
	CredentialHashed
)

func (k CredentialKind) String() string {
	if k == CredentialHashed {
		return "hashed"
	}
	return "legacy"
}

// Credential is the stored password of an admin, classified by format.
type Credential struct {
	Kind  CredentialKind
	value string
}

func ParseCredential(stored string) Credential {
	if IsPasswordHash(stored) {
		return Credential{Kind: CredentialHashed, value: stored}
	}
	return Credential{Kind: CredentialLegacy, value: stored}
}

// Matches checks a submitted password. Legacy credentials accept only DefaultPassword.
func (c Credential) Matches(password string) bool {
	switch c.Kind {
	case CredentialHashed:
		return VerifyPassword(password, c.value)
	default:
		return subtle.ConstantTimeCompare([]byte(password), []byte(DefaultPassword)) == 1
	}
}
