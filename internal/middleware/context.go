// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/clergo/steago/internal/unified"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	PrincipalKey contextKey = "principal"
	ClaimsKey    contextKey = "jwt_claims"

	principalHolderKey contextKey = "principal_holder"
)

type principalHolder struct {
	uuid string
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, principalHolderKey, h)
}

// WithPrincipal attaches the resolved user to ctx.
func WithPrincipal(ctx context.Context, principal unified.User) context.Context {
	if h, ok := ctx.Value(principalHolderKey).(*principalHolder); ok && principal != nil {
		h.uuid = principal.GetUUID().String()
	}
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetPrincipal returns the request's principal. ok is false when the request
// is unauthenticated or the token's subject did not resolve.
func GetPrincipal(ctx context.Context) (principal unified.User, ok bool) {
	principal, ok = ctx.Value(PrincipalKey).(unified.User)
	return principal, ok && principal != nil
}

func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
