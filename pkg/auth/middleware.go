package auth

import (
	"context"
	"net/http"
	"strings"

	"wikid/pkg/logger"
	"wikid/pkg/metrics"
	"wikid/pkg/models"
	"wikid/pkg/store"
)

type ctxUserKey struct{}

// WithUser resolves the session credential on each request and injects the
// authenticated *models.User into the request context. Requests without a
// valid credential pass through as anonymous; per-entity mode bits decide
// downstream what an anonymous caller may do.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signed := credentialFromRequest(r)
		if signed == "" {
			next.ServeHTTP(w, r)
			return
		}
		t, ok := VerifyToken(signed)
		if !ok {
			logger.Warn("invalid_session_token", "path", r.URL.Path, "remote", r.RemoteAddr)
			metrics.AuthFailures.Inc()
			next.ServeHTTP(w, r)
			return
		}
		u, found, err := store.GetUser(t.Username)
		if err != nil || !found {
			if err != nil {
				logger.Error("session_user_load_failed", "user", t.Username, "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		logger.Debug("session_verified", "user", u.Name)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// credentialFromRequest pulls the signed token from the session cookie,
// the X-Wiki-Token header, or an Authorization bearer value, in that order.
func credentialFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if v := strings.TrimSpace(r.Header.Get("X-Wiki-Token")); v != "" {
		return v
	}
	if a := r.Header.Get("Authorization"); len(a) > 7 && strings.EqualFold(a[:7], "Bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// UserFromContext returns the authenticated user or nil for anonymous
// callers.
func UserFromContext(ctx context.Context) *models.User {
	if v := ctx.Value(ctxUserKey{}); v != nil {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
