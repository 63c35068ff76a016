package auth

import "context"

// Identity is the verified caller carried by a session token.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
