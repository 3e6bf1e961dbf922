// Package auth issues and verifies bearer credentials and carries the
// resulting caller identity through request contexts.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the lifetime of every issued credential.
const TokenValidity = 24 * time.Hour

// TokenType is the typ claim of access credentials.
const TokenType = "access"

// Claims are the payload of a credential: registered claims plus the
// credential type.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// UserID returns the numeric subject. It is zero when the subject is not a
// positive integer.
func (c *Claims) UserID() int64 {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// Codec signs and verifies HS256 credentials with a key loaded once at
// startup. It is safe for concurrent use.
type Codec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec returns a Codec signing with secretKey and stamping issuer.
func NewCodec(secretKey []byte, issuer string, opts ...Option) (*Codec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("auth: empty secret key")
	}
	if issuer == "" {
		return nil, errors.New("auth: empty issuer")
	}

	c := &Codec{
		key:    append([]byte(nil), secretKey...),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue creates a credential for userID valid for TokenValidity.
func (c *Codec) Issue(userID int64) (Credential, error) {
	if userID <= 0 {
		return "", common.ErrorValidation
	}

	now := c.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
			ID:        uuid.NewString(),
		},
		Type: TokenType,
	})

	s, err := token.SignedString(c.key)
	if err != nil {
		return "", err
	}
	return Credential(s), nil
}

// Verify checks the signature and claims of cred.
//
// It returns common.ErrTokenExpired when the signature is good but the
// validity window has passed, and common.ErrInvalidToken for anything else
// that is wrong with the credential.
func (c *Codec) Verify(cred Credential) (*Claims, error) {
	if cred == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(string(cred), claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	// The signature is checked before the claims, so an expiry error means
	// the credential was genuine.
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && c.wellFormed(claims) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !c.wellFormed(claims) {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, common.ErrInvalidToken
	}
	return c.key, nil
}

func (c *Codec) wellFormed(claims *Claims) bool {
	return claims.Issuer == c.issuer && claims.Type == TokenType && claims.UserID() > 0
}
