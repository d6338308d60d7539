// Package auth resolves bearer credentials to principals. The identity
// provider that issues sessions also verifies them; this side only looks the
// decoded principal up, so an unknown or expired token simply fails to
// resolve.
package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"classroom_service/internal/errdefs"
)

type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*Principal, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
}

const sessionKeyPrefix = "session:"

// SessionAuthenticator reads principals from the session store shared with
// the identity provider.
type SessionAuthenticator struct {
	cache Cache
}

func NewSessionAuthenticator(cache Cache) *SessionAuthenticator {
	return &SessionAuthenticator{cache: cache}
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, credential string) (*Principal, error) {
	if credential == "" {
		return nil, errdefs.ErrAuthentication
	}

	data, ok := a.cache.Get(ctx, sessionKeyPrefix+credential)
	if !ok {
		return nil, errdefs.ErrAuthentication
	}

	var principal Principal
	if err := json.Unmarshal(data, &principal); err != nil {
		return nil, errdefs.ErrAuthentication
	}

	if principal.UserID == uuid.Nil || principal.Role == "" {
		return nil, errdefs.ErrAuthentication
	}

	return &principal, nil
}

// CredentialFromHeader extracts the bearer token from an Authorization
// header value. Returns the empty string when the header is absent or not a
// bearer scheme.
func CredentialFromHeader(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
