package auth

import "context"

// Identity is who the caller claims to be after credential extraction. The
// zero value is the anonymous identity.
type Identity struct {
	userID     int64
	credential Credential
}

// NewIdentity binds a verified user id to the credential it was read from.
func NewIdentity(userID int64, credential Credential) Identity {
	return Identity{userID: userID, credential: credential}
}

// Anonymous returns the identity of a caller with no usable credential.
func Anonymous() Identity {
	return Identity{}
}

func (i Identity) UserID() int64 {
	return i.userID
}

func (i Identity) Credential() Credential {
	return i.credential
}

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool {
	return i.userID == 0
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity, or the
// anonymous identity when none was stored.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
