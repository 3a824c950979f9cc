package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/netlens/netlens/pkg/auth"
	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/metrics"
	"github.com/netlens/netlens/pkg/types"
)

type contextKey string

const (
	ctxUser contextKey = "user"
	ctxRole contextKey = "role"
)

// caller identifies the authenticated user on a request.
type caller struct {
	Username string
	IsAdmin  bool
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(ctxUser).(caller)
	return c
}

func roleFrom(ctx context.Context) types.Role {
	role, _ := ctx.Value(ctxRole).(types.Role)
	return role
}

// withAuth resolves the bearer token to a user and stores it on the
// request context.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, fmt.Errorf("%w: missing bearer token", errUnauthorized))
			return
		}
		username, err := s.tokens.Validate(token)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errUnauthorized, err))
			return
		}
		user, err := s.mgr.GetUser(username)
		if err != nil {
			writeError(w, fmt.Errorf("%w: unknown user", errUnauthorized))
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, caller{
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withProjectRole resolves the caller's effective role in the {pid}
// project. Non-members of private projects get 403 here.
func (s *Server) withProjectRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := callerFrom(r.Context())
		role, err := s.mgr.RoleFor(chi.URLParam(r, "pid"), c.Username, c.IsAdmin)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCapability gates a subtree on the role capability table.
func requireCapability(check func(types.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !check(roleFrom(r.Context())) {
				writeError(w, fmt.Errorf("%w: insufficient role", manager.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requireRead() func(http.Handler) http.Handler   { return requireCapability(auth.CanRead) }
func requireUpload() func(http.Handler) http.Handler { return requireCapability(auth.CanUpload) }
func requireManage() func(http.Handler) http.Handler { return requireCapability(auth.CanManage) }

// requireAdmin gates the platform-admin surface (user management).
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !callerFrom(r.Context()).IsAdmin {
			writeError(w, fmt.Errorf("%w: admin only", manager.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginLimiter rate-limits credential guessing per client address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *loginLimiter) allow(r *http.Request) bool {
	clientIP := clientAddr(r)

	l.mu.Lock()
	limiter, exists := l.limiters[clientIP]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[clientIP] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the response code for the request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withMetrics observes every request against the route pattern, keeping
// label cardinality bounded.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(r.Method, route).Observe(timer.Duration().Seconds())
	})
}

// withTimeout bounds handler execution. Analysis runs detach into the
// background worker, so no handler should outlive this.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
