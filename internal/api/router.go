// Package api assembles the HTTP surface: the public and admin JSON API,
// session login, operational endpoints and the server-rendered pages.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slmn-lf/east-stress-store/internal/auth"
	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/middleware"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
)

// Pages registers the server-rendered routes.
type Pages interface {
	Routes(r chi.Router)
}

type Deps struct {
	Config    *config.Config
	Store     store.Store
	Catalog   *catalog.Service
	PreOrders *preorder.Service
	CMS       *cms.Service
	Uploads   *upload.Service
	Sessions  *auth.Sessions
	// Files serves /uploads/* when images are kept in process. Optional.
	Files http.Handler
	// Pages is optional; tests exercise the API alone.
	Pages Pages
}

type Server struct {
	cfg       *config.Config
	store     store.Store
	catalog   *catalog.Service
	preorders *preorder.Service
	cms       *cms.Service
	uploads   *upload.Service
	sessions  *auth.Sessions
}

// NewRouter builds the full handler tree.
func NewRouter(d Deps) http.Handler {
	s := &Server{
		cfg:       d.Config,
		store:     d.Store,
		catalog:   d.Catalog,
		preorders: d.PreOrders,
		cms:       d.CMS,
		uploads:   d.Uploads,
		sessions:  d.Sessions,
	}
	sec := d.Config.Security

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
	if sec.RateLimitRequests > 0 {
		r.Use(httprate.Limit(sec.RateLimitRequests, sec.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(s.tooManyRequests),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	if d.Files != nil {
		r.Handle("/uploads/*", d.Files)
	}

	r.With(s.loginLimiter()).Post("/auth/login", s.login)
	r.Post("/auth/logout", s.logout)

	r.Route("/api/v1", func(r chi.Router) {
		if len(sec.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   sec.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		r.Get("/products", s.listPublicProducts)
		r.Get("/products/{id}", s.getProduct)
		r.Post("/products/{id}/preorders", s.submitPreOrder)
		r.Get("/cms-profile", s.getCMSProfile)
		r.Post("/contact", s.submitContact)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.sessions.RequireAdmin(s.unauthorized))

			r.Get("/products", s.listAdminProducts)
			r.Post("/products", s.createProduct)
			r.Get("/products/_explain", s.explainProducts)
			r.Get("/products/{id}", s.getProduct)
			r.Put("/products/{id}", s.updateProduct)
			r.Delete("/products/{id}", s.deleteProduct)
			r.Patch("/products/{id}/status", s.setProductStatus)

			r.Get("/preorders", s.listPreOrders)
			r.Get("/preorders/{id}", s.getPreOrder)
			r.Delete("/preorders/{id}", s.deletePreOrder)
			r.Get("/stats", s.stats)

			r.Get("/cms-profile", s.getCMSProfile)
			r.Put("/cms-profile", s.replaceCMSProfile)
			r.Put("/cms-profile/{section}", s.updateCMSSection)
			r.Get("/contacts", s.listContacts)

			r.Post("/uploads", s.uploadImage)
		})
	})

	if d.Pages != nil {
		d.Pages.Routes(r)
	}
	return r
}

func (s *Server) loginLimiter() func(http.Handler) http.Handler {
	n := s.cfg.Security.LoginRateLimit
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(n, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(s.tooManyRequests),
	)
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "too many requests", nil)
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required", nil)
}
