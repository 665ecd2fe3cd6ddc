// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/lifecycle"
	"github.com/clergo/steago/internal/unified"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// PrincipalResolver maps a token subject to a user.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, subject string) (unified.User, error)
}

// WorkspaceProvider hands out the bound workspace model.
type WorkspaceProvider interface {
	Workspace() (unified.WorkspaceModel, error)
}

type AccessTokenClaims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator requires a valid bearer token whose subject resolves to a
// user. Unresolvable subjects are rejected; no principal is ever attached
// for them.
func Authenticator(
	verifier TokenVerifier,
	resolver PrincipalResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), claims.Subject)
			if err != nil {
				handleResolveError(w, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = WithPrincipal(ctx, principal)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches a principal when the request carries a token that
// verifies and resolves, and otherwise passes the request on untouched.
func OptionalAuth(
	verifier TokenVerifier,
	resolver PrincipalResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				claims, err := verifier.VerifyAccessToken(r.Context(), token)
				if err == nil {
					principal, err := resolver.ResolvePrincipal(r.Context(), claims.Subject)
					if err == nil {
						ctx := WithClaims(r.Context(), claims)
						r = r.WithContext(WithPrincipal(ctx, principal))
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if principal.GetType() != unified.UserTypeSuperAdmin {
			core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireActive refuses principals whose own status or whose workspace's
// status does not permit access.
func RequireActive(workspaces WorkspaceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}

			model, err := workspaces.Workspace()
			if err != nil {
				core.InternalServerError(w, err)
				return
			}

			if err := lifecycle.CheckPrincipal(r.Context(), principal, model); err != nil {
				if errors.Is(err, core.ErrForbidden) {
					core.JSONError(w, core.NewAppError(
						err,
						strings.TrimSuffix(err.Error(), ": "+core.ErrForbidden.Error()),
						http.StatusForbidden,
						"INACTIVE",
					))
					return
				}
				core.JSONError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

func handleResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.JSONError(w, core.NewAppError(
			err,
			"token subject does not match any user",
			http.StatusUnauthorized,
			"PRINCIPAL_NOT_FOUND",
		))
		return
	}
	core.InternalServerError(w, err)
}
