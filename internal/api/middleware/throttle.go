package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const limiterIdleEviction = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle rate-limits login attempts per client IP. Credential
// endpoints are the only brute-forceable surface the gateway exposes, so
// they get their own budget.
type LoginThrottle struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewLoginThrottle(rpm int) *LoginThrottle {
	if rpm <= 0 {
		rpm = 10
	}
	return &LoginThrottle{
		rpm:     rpm,
		clients: make(map[string]*clientLimiter),
	}
}

// Middleware returns the echo middleware enforcing the per-IP budget.
func (t *LoginThrottle) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !t.allow(clientIP(c.Request())) {
				c.Response().Header().Set("Retry-After", "60")
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
			}
			return next(c)
		}
	}
}

func (t *LoginThrottle) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for key, cl := range t.clients {
		if now.Sub(cl.lastSeen) > limiterIdleEviction {
			delete(t.clients, key)
		}
	}

	cl, ok := t.clients[ip]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(t.rpm)/60.0), t.rpm),
		}
		t.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
