package common

import "context"

// Auth methods recorded on the request context. Cookie-authenticated mutating
// requests additionally require the double-submit CSRF pair.
const (
	AuthMethodBearer = "bearer"
	AuthMethodCookie = "cookie"
)

// UserContext holds the authenticated caller for a request.
type UserContext struct {
	UserID     string
	Email      string
	AuthMethod string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or empty string when the
// request is unauthenticated.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.UserID
	}
	return ""
}
