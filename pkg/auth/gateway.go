package auth

import (
	"net"
	"net/http"
	"strings"

	"wikid/pkg/logger"
	"wikid/pkg/utils"
)

// SecConfig drives the request gateway: CORS, rate limiting and the
// optional IP whitelist.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
}

// Gateway wraps a handler with CORS handling, IP whitelisting and
// per-client rate limiting. When cfg.RPS is zero rate limiting is off.
func Gateway(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-Wiki-Token")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if len(cfg.IPWhitelist) > 0 {
				ip := clientIP(r)
				if !ipWhitelisted(ip, cfg.IPWhitelist) {
					logger.Warn("request_blocked", "reason", "ip_not_whitelisted", "ip", ip, "path", r.URL.Path)
					utils.JSONError(w, http.StatusForbidden, "forbidden")
					return
				}
			}

			// health probes are never throttled
			if r.URL.Path == "/healthz" && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.RPS > 0 && !limiters.Allow(clientIP(r)) {
				logger.Warn("request_rate_limited", "ip", clientIP(r), "path", r.URL.Path)
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fw := r.Header.Get("X-Forwarded-For"); fw != "" {
		if i := strings.IndexByte(fw, ','); i > 0 {
			return strings.TrimSpace(fw[:i])
		}
		return strings.TrimSpace(fw)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func ipWhitelisted(ip string, list []string) bool {
	for _, w := range list {
		if w == ip {
			return true
		}
		if _, cidr, err := net.ParseCIDR(w); err == nil {
			if p := net.ParseIP(ip); p != nil && cidr.Contains(p) {
				return true
			}
		}
	}
	return false
}
