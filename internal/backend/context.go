package backend

import (
	"context"
	"strings"
)

type tokenContextKey struct{}

// ContextWithToken attaches the caller's bearer token to ctx.
func ContextWithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if ctx == nil || token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the token attached by ContextWithToken.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
