package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/armeriaops/armimport-backend/api/responses"
	"github.com/armeriaops/armimport-backend/pkg/config"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

const maxAuthBodyBytes = 1 << 16

type rateLimitStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	RateLimitKey(scope, id string) string
}

// AuthRateLimitPolicy throttles login attempts per client IP and per
// normalized email hash within a rolling window.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       "login",
		window:     cfg.LoginWindow,
		ipLimit:    cfg.LoginIPLimit,
		emailLimit: cfg.LoginEmailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit enforces the policy before the handler runs. The store is
// consulted best effort; a broken counter never blocks a login.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !policy.enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if policy.ipLimit > 0 {
				ip := clientIP(r)
				if ip != "" {
					key := store.RateLimitKey(policy.name+":ip", ip)
					if !allow(ctx, store, logg, key, policy.window, policy.ipLimit) {
						respondRateLimited(ctx, logg, w)
						return
					}
				}
			}

			if policy.emailLimit > 0 {
				email, body := extractEmail(r)
				if body != nil {
					r.Body = io.NopCloser(bytes.NewReader(body))
				}
				if email != "" {
					key := store.RateLimitKey(policy.name+":email", hashValue(email))
					if !allow(ctx, store, logg, key, policy.window, policy.emailLimit) {
						respondRateLimited(ctx, logg, w)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store rateLimitStore, logg *logger.Logger, key string, window time.Duration, limit int) bool {
	count, err := store.Incr(ctx, key)
	if err != nil {
		if logg != nil {
			logg.Warn(ctx, fmt.Sprintf("rate limit counter unavailable: %v", err))
		}
		return true
	}
	if count == 1 {
		if err := store.Expire(ctx, key, window); err != nil && logg != nil {
			logg.Warn(ctx, fmt.Sprintf("rate limit expire failed: %v", err))
		}
	}
	return count <= int64(limit)
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func extractEmail(r *http.Request) (string, []byte) {
	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
	if err != nil {
		return "", nil
	}
	_ = r.Body.Close()

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", body
	}
	return normalizeEmail(payload.Email), body
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
