package auth

import "context"

type ctxKeyUserID struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, userID)
}

// UserIDFrom returns the authenticated user id stored by the middleware.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(ctxKeyUserID{}).(string)
	return id, id != ""
}
