package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionSecret_Matches(t *testing.T) {
	s := SessionSecretFor("cred-1")

	assert.False(t, s.Empty())
	assert.NotEqual(t, "cred-1", string(s))
	assert.True(t, s.Matches("cred-1"))
	assert.False(t, s.Matches("cred-2"))
	assert.False(t, s.Matches(""))
}

func TestSessionSecret_EmptyMatchesNothing(t *testing.T) {
	var s SessionSecret

	assert.True(t, s.Empty())
	assert.False(t, s.Matches(""))
	assert.False(t, s.Matches("cred"))
	assert.True(t, SessionSecretFor("").Empty())
}

func TestIdentity_Context(t *testing.T) {
	ctx := context.Background()

	id := IdentityFromContext(ctx)
	assert.True(t, id.IsAnonymous())
	assert.Equal(t, Anonymous(), id)

	ctx = WithIdentity(ctx, NewIdentity(42, "cred"))
	id = IdentityFromContext(ctx)
	assert.False(t, id.IsAnonymous())
	assert.Equal(t, int64(42), id.UserID())
	assert.Equal(t, Credential("cred"), id.Credential())
}
