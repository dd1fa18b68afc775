package middleware

import "context"

type principalKey struct{}

// Principal is the authenticated caller attached to the request context by
// the auth middleware.
type Principal struct {
	UserID   string
	Username string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
