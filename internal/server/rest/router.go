package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/metrics"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/dmitrijs2005/blogapi/internal/server/services"
)

// UserAPI is the account side of the API, implemented by services.UserService.
type UserAPI interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	VerifyEmail(ctx context.Context, token string) error
	SessionAuth
	BearerAuth
}

// BlogAPI is implemented by services.BlogService.
type BlogAPI interface {
	List(ctx context.Context) ([]*models.Blog, error)
	Get(ctx context.Context, id string) (*models.Blog, error)
	Create(ctx context.Context, title, snippet, body string) (*models.Blog, error)
	Update(ctx context.Context, id, title, snippet, body string) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
}

// Options are the HTTP-layer settings taken from config.
type Options struct {
	AllowedOrigins  []string
	GuardBlogCreate bool
	// LoginRateLimit is the number of login attempts allowed per minute per IP.
	LoginRateLimit int
	// TrustProxy lets X-Forwarded-For / X-Real-IP replace the peer address.
	// Without it clients could pick their own rate-limit key.
	TrustProxy bool
	// SecureCookies marks the session cookie Secure (production).
	SecureCookies bool
	// SessionTTL is the session cookie lifetime.
	SessionTTL time.Duration
	// DebugSessions logs session cookie presence on every request.
	DebugSessions bool
}

type handler struct {
	users UserAPI
	blogs BlogAPI
	log   logging.Logger
	opts  Options
}

// NewRouter wires every route of the API.
func NewRouter(users UserAPI, blogs BlogAPI, l logging.Logger, m *metrics.Metrics, opts Options) http.Handler {
	h := &handler{
		users: users,
		blogs: blogs,
		log:   l.With("module", "http"),
		opts:  opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	var sessions SessionAuth
	if opts.DebugSessions {
		sessions = users
	}
	r.Use(requestLogger(h.log, m, sessions))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello World!"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	guard := BearerGuard(users, l)
	limiter := NewRateLimiter(opts.LoginRateLimit, time.Minute)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.With(limiter.Limit).Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Get("/verify-email", h.verifyEmail)
		r.Post("/verify-email", h.verifyEmail)
	})

	r.Route("/api/blogs", func(r chi.Router) {
		if opts.GuardBlogCreate {
			r.With(guard).Post("/", h.createBlog)
		} else {
			r.Post("/", h.createBlog)
		}
		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Get("/", h.listBlogs)
			r.Get("/{id}", h.getBlog)
			r.Put("/{id}", h.updateBlog)
			r.Delete("/{id}", h.deleteBlog)
		})
	})

	return r
}

func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotFound, "API route not found")
}

// requestLogger logs and measures each request once the route pattern is known.
// With a non-nil sessions it also logs the session behind the cookie, if any.
func requestLogger(l logging.Logger, m *metrics.Metrics, sessions SessionAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			if sessions != nil {
				logSession(r, l, sessions)
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			m.ObserveRequest(r.Method, route, status, elapsed)
			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func logSession(r *http.Request, l logging.Logger, sessions SessionAuth) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		l.Debug(r.Context(), "session", "path", r.URL.Path, "cookie", false)
		return
	}
	sess, err := sessions.Session(r.Context(), c.Value)
	if err != nil {
		l.Debug(r.Context(), "session", "path", r.URL.Path, "cookie", true, "live", false)
		return
	}
	l.Debug(r.Context(), "session", "path", r.URL.Path, "cookie", true, "live", true,
		"user_id", sess.UserID, "expires_at", sess.ExpiresAt)
}
