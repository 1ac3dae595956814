package auth

import "context"

type contextKey string

const authContextKey contextKey = "docuchat_auth"

// AuthInfo holds the authenticated caller identity extracted from a bearer token.
type AuthInfo struct {
	TokenID  string
	UserID   string
	Email    string
	RPMLimit *int
}

func ContextWithAuth(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey, info)
}

func AuthFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authContextKey).(*AuthInfo)
	return info, ok
}
