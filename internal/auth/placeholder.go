package auth

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Credentials is the single administrator account of the placeholder auth
// mode. It is loaded from configuration and is not a real identity system.
type Credentials struct {
	Email    string
	Password string
}

// Check compares both values in constant time. Emails are case-insensitive.
func (c Credentials) Check(email, password string) bool {
	if c.Email == "" || c.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(strings.ToLower(c.Email)))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password))
	return emailOK&passOK == 1
}

// LoginLimiter throttles login attempts per client key.
type LoginLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*rate.Limiter
}

func NewLoginLimiter(perMin int) *LoginLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	return &LoginLimiter{perMin: perMin, limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether key may attempt another login now.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
