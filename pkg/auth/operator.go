// Package auth guards operator-only operations with a single shared secret.
package auth

import (
	"crypto/subtle"
)

type OperatorAuthorizer interface {
	Authorize(presented string) bool
}

type SharedSecret struct {
	secret []byte
}

func NewSharedSecret(secret string) *SharedSecret {
	return &SharedSecret{secret: []byte(secret)}
}

// Authorize compares in constant time. An unconfigured secret denies everyone,
// including callers presenting an empty string.
func (s *SharedSecret) Authorize(presented string) bool {
	if len(s.secret) == 0 || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare(s.secret, []byte(presented)) == 1
}

// Configured reports whether a secret was set at all.
func (s *SharedSecret) Configured() bool {
	return len(s.secret) > 0
}

// DenyAll rejects every credential.
type DenyAll struct{}

func (DenyAll) Authorize(string) bool { return false }
