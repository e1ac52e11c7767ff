package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"mouvements/internal/cache"
	"mouvements/internal/core"
	"mouvements/internal/log"
	"mouvements/internal/middleware/ratelimit"
	"mouvements/internal/middleware/security"
	"mouvements/internal/middleware/trace"
	"mouvements/internal/services"
	"mouvements/web"
)

// UserDirectory resolves the acting user from the identity forwarded by
// the authenticating reverse proxy. Unknown usernames are provisioned
// on first sight.
type UserDirectory interface {
	GetUserByUsername(ctx context.Context, username string) (core.Actor, error)
	CreateUser(ctx context.Context, a *core.Actor) error
	ListUsers(ctx context.Context) ([]core.Actor, error)
}

// TestMailSender sends the admin test email. Nil when notifications are
// disabled.
type TestMailSender interface {
	SendTest(ctx context.Context) error
}

// Config carries the dependencies of the web server.
type Config struct {
	Port      string
	BaseURL   string
	Movements *services.MovementService
	Stats     *services.StatsService
	Users     UserDirectory
	TestMail  TestMailSender
	Logger    *log.Logger
}

type appMetrics struct {
	cacheHits   int64
	cacheMisses int64
	uptime      time.Time
}

// Server is the HTML front of the movement register.
type Server struct {
	httpServer *http.Server
	templates  *template.Template

	movements *services.MovementService
	stats     *services.StatsService
	users     UserDirectory
	testMail  TestMailSender
	logger    *log.Logger
	audit     *log.StructuredLogger

	monthCache   *cache.LRUCache[monthPage]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityHeaders  *security.HeadersMiddleware
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics appMetrics
}

// NewServer wires templates, middleware and routes. It does not start
// listening; call Start.
func NewServer(cfg Config) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector()

	s := &Server{
		templates:        tmpl,
		movements:        cfg.Movements,
		stats:            cfg.Stats,
		users:            cfg.Users,
		testMail:         cfg.TestMail,
		logger:           cfg.Logger,
		audit:            log.NewStructuredLogger(cfg.Logger),
		monthCache:       cache.NewLRUCache[monthPage](24, 5*time.Minute),
		cacheManager:     cache.NewManager(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		securityHeaders:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		appMetrics:       appMetrics{uptime: time.Now()},
	}

	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	handler := s.traceMiddleware.Middleware(
		s.securityHeaders.Middleware(
			s.withSuspicionLog(
				s.rateLimiter.Middleware(detector.ExtractClientIP, nil)(
					log.Middleware(cfg.Logger)(
						log.RequestIDMiddleware(func(r *http.Request) string {
							return trace.GetRequestID(r.Context())
						})(
							s.withActor(s.routes())))))))

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// withSuspicionLog counts and logs requests that look like probing.
// They are not blocked; the count feeds /metrics.
func (s *Server) withSuspicionLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /recherche", s.handleSearch)
	mux.HandleFunc("GET /en-attente", s.handlePending)
	mux.HandleFunc("GET /statistiques", s.handleStatistics)

	mux.HandleFunc("GET /mouvements/nouveau", s.handleNewForm)
	mux.HandleFunc("POST /mouvements", s.handleCreate)
	mux.HandleFunc("GET /mouvements/{id}/modifier", s.handleEditForm)
	mux.HandleFunc("POST /mouvements/{id}", s.handleUpdate)
	mux.HandleFunc("POST /mouvements/{id}/supprimer", s.handleDelete)
	mux.HandleFunc("POST /mouvements/{id}/prise-en-compte", s.handleAcknowledge)

	mux.HandleFunc("POST /admin/email-test", s.handleTestEmail)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		mux.Handle("GET /static/",
			security.StaticAssetMiddleware(86400)(
				http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	}

	return mux
}

// Start begins serving and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening",
		log.FieldComponent, log.ComponentHTTP,
		"addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops background helpers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	s.cacheManager.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware chain, used by the tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"monthLabel": core.MonthLabel,
		"dateFR": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"datetimeFR": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006 à 15:04")
		},
	}
}
