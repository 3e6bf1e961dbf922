package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/hradmin/internal/cryptox"
)

// Credential is the signed token handed to a client at login and presented
// back as a bearer header.
type Credential string

// SessionSecret is the value the server keeps per user to decide whether a
// credential still belongs to the active session. Empty means no session.
type SessionSecret string

// SessionSecretFor derives the stored session secret of an issued credential.
func SessionSecretFor(c Credential) SessionSecret {
	if c == "" {
		return ""
	}
	return SessionSecret(cryptox.Digest([]byte(c)))
}

// Empty reports whether no session is recorded.
func (s SessionSecret) Empty() bool {
	return s == ""
}

// Matches reports whether c is the credential this secret was derived from.
// The comparison runs in constant time.
func (s SessionSecret) Matches(c Credential) bool {
	if s.Empty() || c == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(SessionSecretFor(c))) == 1
}
