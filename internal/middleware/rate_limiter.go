package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"golang.org/x/time/rate"
)

// DefaultParamKey is the query parameter used for per-param rate limiting.
const DefaultParamKey = "location"

// Limit is a token bucket expressed as requests per minute with a burst.
type Limit struct {
	PerMinute float64
	Burst     int
}

func (l Limit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(l.PerMinute/60.0), l.Burst)
}

// the visitor holds the rate limiter and last seen time for a specific key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a global limit per client IP and a tighter limit per
// client IP and value of the param key, so repeated searches for the same city
// are throttled before unrelated ones.
type RateLimiter struct {
	global   Limit
	param    Limit
	paramKey string
	idle     time.Duration

	muGlobal       sync.Mutex
	globalVisitors map[string]*visitor // key: ip
	muParam        sync.Mutex
	paramVisitors  map[string]map[string]*visitor // key: ip -> paramValue
}

func NewRateLimiter(global, param Limit, paramKey string, idle time.Duration) *RateLimiter {
	if paramKey == "" {
		paramKey = DefaultParamKey
	}
	return &RateLimiter{
		global:         global,
		param:          param,
		paramKey:       paramKey,
		idle:           idle,
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

// NewRateLimiterFromConfig builds a limiter from the rate_limiter config section.
func NewRateLimiterFromConfig() *RateLimiter {
	gRate, gBurst := config.GetGlobalRateLimiterConfig()
	pRate, pBurst := config.GetParamRateLimiterConfig()
	return NewRateLimiter(
		Limit{PerMinute: gRate, Burst: gBurst},
		Limit{PerMinute: pRate, Burst: pBurst},
		DefaultParamKey,
		config.GetRateLimiterCleanupTimeout(),
	)
}

// getGlobalLimiter returns the rate limiter for the given IP address, creating one if it does not exist.
func (l *RateLimiter) getGlobalLimiter(ip string) *rate.Limiter {
	l.muGlobal.Lock()
	defer l.muGlobal.Unlock()
	v, exists := l.globalVisitors[ip]
	if !exists {
		limiter := l.global.limiter()
		l.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getParamLimiter returns the rate limiter for the given IP address and parameter value, creating one if it does not exist.
func (l *RateLimiter) getParamLimiter(ip, param string) *rate.Limiter {
	l.muParam.Lock()
	defer l.muParam.Unlock()
	if _, ok := l.paramVisitors[ip]; !ok {
		l.paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := l.paramVisitors[ip][param]
	if !exists {
		limiter := l.param.limiter()
		l.paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes visitors not seen for longer than the idle timeout.
func (l *RateLimiter) cleanup(now time.Time) {
	l.muGlobal.Lock()
	for ip, v := range l.globalVisitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.globalVisitors, ip)
		}
	}
	l.muGlobal.Unlock()

	l.muParam.Lock()
	for ip, paramMap := range l.paramVisitors {
		for param, v := range paramMap {
			if now.Sub(v.lastSeen) > l.idle {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(l.paramVisitors, ip)
		}
	}
	l.muParam.Unlock()
}

// StartCleanup evicts stale visitors every minute until ctx is done.
func (l *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.cleanup(now)
			}
		}
	}()
}

// Reset clears all visitor state. Used primarily for testing.
func (l *RateLimiter) Reset() {
	l.muGlobal.Lock()
	l.globalVisitors = make(map[string]*visitor)
	l.muGlobal.Unlock()
	l.muParam.Lock()
	l.paramVisitors = make(map[string]map[string]*visitor)
	l.muParam.Unlock()
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

func tooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}

// paramBucket builds the per-param key from the non-empty values of keys.
// It is empty when the request carries none of them.
func paramBucket(r *http.Request, keys []string) string {
	q := r.URL.Query()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ToLower(strings.TrimSpace(q.Get(k)))
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}

// Middleware returns an HTTP middleware that enforces global and per-parameter rate limiting
// on the configured param key.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return l.LimitBy(next, l.paramKey)
}

// LimitBy enforces the global limit and a per-param limit keyed on paramKeys.
// Requests carrying none of the keys only count against the global limit.
// If a limit is exceeded, it responds with a 429 status and a JSON error message.
func (l *RateLimiter) LimitBy(next http.Handler, paramKeys ...string) http.Handler {
	label := strings.Join(paramKeys, "/")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		if !l.getGlobalLimiter(ip).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", l.global.PerMinute),
				"Too Many Requests (global limit)")
			return
		}
		if param := paramBucket(r, paramKeys); param != "" && !l.getParamLimiter(ip, param).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per unique %s per user/IP", l.param.PerMinute, label),
				"Too Many Requests (per-param limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}
