package guard

import "context"

type principalKey struct{}

// ContextWithPrincipal stores the authenticated principal id for handlers
// downstream. Authentication itself is the embedding application's job.
func ContextWithPrincipal(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalKey{}, principalID)
}

// PrincipalFromContext returns the principal id set by the embedding
// application's authentication layer.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}
