package context

import "context"

// User is the authenticated caller as resolved by the auth middleware.
type User struct {
	Username   string
	Permission string
}

type userKey struct{}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey{}).(User)
	return user, ok
}

// MustUserFromContext is for handlers behind the auth middleware, where a
// missing user is a programming error.
func MustUserFromContext(ctx context.Context) User {
	user, ok := UserFromContext(ctx)
	if !ok {
		panic("user is not set in context")
	}
	return user
}
