package middleware

import (
	"crypto/subtle"
	"net/http"

	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/common"

	"go.uber.org/zap"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

// AdminKey authenticates admin requests against a shared secret using a
// constant-time comparison. An empty configured secret means the admin
// surface is disabled: every request is denied (fail closed), never
// allowed through.
func AdminKey(secret string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Admin responses must never be cached downstream.
			w.Header().Set("Cache-Control", cache.HeaderNoCache)

			if secret == "" {
				logger.Warn("admin key not configured, denying request",
					zap.String("path", r.URL.Path),
				)
				common.RespondError(w, http.StatusUnauthorized,
					common.StandardErrorCodes.Unauthorized,
					"Unauthorized: admin access is not configured")
				return
			}

			provided := r.Header.Get(AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				logger.Warn("admin key rejected",
					zap.String("path", r.URL.Path),
					zap.String("remoteAddr", r.RemoteAddr),
				)
				common.RespondError(w, http.StatusUnauthorized,
					common.StandardErrorCodes.Unauthorized,
					"Unauthorized: invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
