// AngelaMos | 2026
// platform.go

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/clergo/steago/internal/core"
)

const PlatformKeyHeader = "X-Platform-Key"

// RequirePlatformKey admits only callers presenting the shared platform key.
// With an empty key every request is refused.
func RequirePlatformKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(PlatformKeyHeader)

			if key == "" || presented == "" ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				core.JSONError(w, core.UnauthorizedError("invalid platform key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
