package identity

import "context"

// Identity is the opaque principal that owns guardrails and casts votes.
// Two identities are the same principal iff their string forms are equal.
type Identity string

type contextKey struct{}

func (i Identity) String() string {
	return string(i)
}

func (i Identity) IsZero() bool {
	return i == ""
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.IsZero() {
		return "", false
	}
	return id, true
}
