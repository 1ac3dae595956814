package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/docuchat/docuchat-server/internal/httputil"
)

// Middleware returns a chi middleware that authenticates requests via Bearer token.
func Middleware(store TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteUnauthorized(w, reqID, "Missing Authorization header. Use: Authorization: Bearer <token>")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				httputil.WriteUnauthorized(w, reqID, "Invalid Authorization format. Use: Authorization: Bearer <token>")
				return
			}
			if token == "" {
				httputil.WriteUnauthorized(w, reqID, "Empty access token")
				return
			}

			tokenHash := HashToken(token)
			meta, err := store.Lookup(r.Context(), tokenHash)
			if err != nil {
				slog.Error("token lookup failed", "error", err, "token_prefix", safePrefix(token))
				httputil.WriteInternalError(w, reqID, "Internal error during authentication")
				return
			}
			if meta == nil {
				slog.Warn("auth failed: token not found", "token_prefix", safePrefix(token))
				httputil.WriteUnauthorized(w, reqID, "Unauthorized - Please log in again")
				return
			}

			info := &AuthInfo{
				TokenID:  meta.ID,
				UserID:   meta.UserID,
				Email:    meta.Email,
				RPMLimit: meta.RPMLimit,
			}

			ctx := ContextWithAuth(r.Context(), info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// safePrefix returns a safe-to-log prefix of a token (never the full token).
func safePrefix(token string) string {
	if len(token) > 20 {
		return token[:20] + "..."
	}
	return token
}
