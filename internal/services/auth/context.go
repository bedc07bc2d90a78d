package auth

import (
	"context"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the resolved caller, injected into the request context by the
// auth middleware. Handlers receive it explicitly instead of reaching for
// any ambient session state.
type Identity struct {
	UserID   int64
	SID      string
	Role     enums.Role
	Approved bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
