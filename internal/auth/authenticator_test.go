package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom_service/internal/auth"
	"classroom_service/internal/errdefs"
)

type fakeCache struct {
	entries map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	data, ok := c.entries[key]
	return data, ok
}

func TestSessionAuthenticator(t *testing.T) {
	userID := uuid.New()
	cache := &fakeCache{entries: map[string][]byte{
		"session:good-token":    []byte(`{"user_id":"` + userID.String() + `","role":"student"}`),
		"session:garbage-token": []byte(`not json`),
		"session:nil-id-token":  []byte(`{"user_id":"00000000-0000-0000-0000-000000000000","role":"student"}`),
		"session:no-role-token": []byte(`{"user_id":"` + userID.String() + `","role":""}`),
	}}
	authenticator := auth.NewSessionAuthenticator(cache)

	t.Run("ResolvesPrincipal", func(t *testing.T) {
		principal, err := authenticator.Authenticate(context.Background(), "good-token")
		require.NoError(t, err)
		assert.Equal(t, userID, principal.UserID)
		assert.Equal(t, "student", principal.Role)
	})

	t.Run("EmptyCredential", func(t *testing.T) {
		_, err := authenticator.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, errdefs.ErrAuthentication)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, err := authenticator.Authenticate(context.Background(), "missing-token")
		assert.ErrorIs(t, err, errdefs.ErrAuthentication)
	})

	t.Run("UndecodableSession", func(t *testing.T) {
		_, err := authenticator.Authenticate(context.Background(), "garbage-token")
		assert.ErrorIs(t, err, errdefs.ErrAuthentication)
	})

	t.Run("NilUserID", func(t *testing.T) {
		_, err := authenticator.Authenticate(context.Background(), "nil-id-token")
		assert.ErrorIs(t, err, errdefs.ErrAuthentication)
	})

	t.Run("EmptyRole", func(t *testing.T) {
		_, err := authenticator.Authenticate(context.Background(), "no-role-token")
		assert.ErrorIs(t, err, errdefs.ErrAuthentication)
	})
}

func TestCredentialFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", auth.CredentialFromHeader("Bearer abc123"))
	assert.Equal(t, "abc123", auth.CredentialFromHeader("Bearer  abc123 "))
	assert.Equal(t, "", auth.CredentialFromHeader(""))
	assert.Equal(t, "", auth.CredentialFromHeader("Basic abc123"))
	assert.Equal(t, "", auth.CredentialFromHeader("bearer abc123"))
}
