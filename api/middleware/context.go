package middleware

import (
	"context"

	"github.com/hmendoza/prepflow-backend/internal/scope"
)

type contextKey string

const (
	ctxAccess   contextKey = "access"
	ctxAccessID contextKey = "access_id"
)

// AccessFromContext returns the caller identity seeded by the auth middleware.
func AccessFromContext(ctx context.Context) (scope.Access, bool) {
	if ctx == nil {
		return scope.Access{}, false
	}
	if v, ok := ctx.Value(ctxAccess).(scope.Access); ok {
		return v, true
	}
	return scope.Access{}, false
}

// AccessIDFromContext returns the jti of the presented token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithAccess injects the caller identity into the context.
func WithAccess(ctx context.Context, access scope.Access) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccess, access)
}

// WithAccessID injects the token jti into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
