package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/content"
	"github.com/cryptoedu/presale-server/internal/intake"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/presale"
	"github.com/cryptoedu/presale-server/internal/quote"
	"github.com/cryptoedu/presale-server/internal/ratelimit"
	"github.com/cryptoedu/presale-server/internal/walletwatch"
)

var serverStartTime = time.Now()

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg     *config.Config
	quotes  *quote.Service
	manager *presale.Manager
	intake  *intake.Service
	content *content.Repository
	watcher *walletwatch.Watcher
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Config  *config.Config
	Quotes  *quote.Service
	Manager *presale.Manager
	Intake  *intake.Service
	Content *content.Repository
	Watcher *walletwatch.Watcher
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// New builds the HTTP server with a configured router.
func New(deps Deps) *Server {
	router := chi.NewRouter()

	s := &Server{
		handlers: newHandlers(deps),
		httpServer: &http.Server{
			Addr:         deps.Config.Server.Address,
			ReadTimeout:  deps.Config.Server.ReadTimeout.Duration,
			WriteTimeout: deps.Config.Server.WriteTimeout.Duration,
			IdleTimeout:  deps.Config.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	ConfigureRouter(router, deps)
	return s
}

func newHandlers(deps Deps) handlers {
	return handlers{
		cfg:     deps.Config,
		quotes:  deps.Quotes,
		manager: deps.Manager,
		intake:  deps.Intake,
		content: deps.Content,
		watcher: deps.Watcher,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
}

// ConfigureRouter attaches all routes and middleware to an existing router.
func ConfigureRouter(router chi.Router, deps Deps) {
	if router == nil {
		return
	}

	handler := newHandlers(deps)
	cfg := deps.Config

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}

	router.Use(securityHeadersMiddleware)
	router.Use(logger.Middleware(deps.Logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	rateLimitCfg := ratelimit.Config{
		GlobalEnabled:    cfg.RateLimit.GlobalEnabled,
		GlobalLimit:      cfg.RateLimit.GlobalLimit,
		GlobalWindow:     cfg.RateLimit.GlobalWindow.Duration,
		PerWalletEnabled: cfg.RateLimit.PerWalletEnabled,
		PerWalletLimit:   cfg.RateLimit.PerWalletLimit,
		PerWalletWindow:  cfg.RateLimit.PerWalletWindow.Duration,
		PerIPEnabled:     cfg.RateLimit.PerIPEnabled,
		PerIPLimit:       cfg.RateLimit.PerIPLimit,
		PerIPWindow:      cfg.RateLimit.PerIPWindow.Duration,
		Metrics:          deps.Metrics,
	}
	router.Use(ratelimit.GlobalLimiter(rateLimitCfg))
	router.Use(ratelimit.WalletLimiter(rateLimitCfg))
	router.Use(ratelimit.IPLimiter(rateLimitCfg))

	prefix := cfg.Server.RoutePrefix

	// Lightweight endpoints with a short timeout.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Get(prefix+"/health", handler.health)
		r.Handle(prefix+"/metrics", promhttp.Handler())

		r.Get(prefix+"/presale/v1/config", handler.presaleConfig)
		r.Get(prefix+"/presale/v1/quote", handler.getQuote)

		r.Get(prefix+"/content/blog", handler.listBlogPosts)
		r.Get(prefix+"/content/blog/{slug}", handler.getBlogPost)
		r.Get(prefix+"/content/audit", handler.getAudit)
		r.Get(prefix+"/content/tokenomics", handler.getTokenomics)
		r.Get(prefix+"/content/roadmap", handler.getRoadmap)
		r.Get(prefix+"/content/whitepaper", handler.getWhitepaper)
		r.Get(prefix+"/content/privacy", handler.getPrivacy)
		r.Get(prefix+"/content/team", handler.getTeam)
		r.Get(prefix+"/content/scams", handler.listScams)
		r.Post(prefix+"/content/scams/report", handler.reportScam)
	})

	// Purchase endpoints block on RPC reads and chain confirmations.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(90 * time.Second))

		r.Post(prefix+"/presale/v1/quote/refresh", handler.refreshQuote)
		r.Get(prefix+"/presale/v1/wallet/{pubkey}", handler.getWallet)

		r.Post(prefix+"/presale/v1/purchase/prepare", handler.preparePurchase)
		r.Post(prefix+"/presale/v1/purchase/submit", handler.submitPurchase)
		r.Post(prefix+"/presale/v1/purchase/cancel", handler.cancelPurchase)
		r.Post(prefix+"/presale/v1/purchase/reset", handler.resetPurchase)
		r.Get(prefix+"/presale/v1/purchase/status", handler.purchaseStatus)

		r.Post(prefix+"/presale/v1/contact", handler.submitContact)
		r.Post(prefix+"/presale/v1/contact/reset", handler.resetContact)
	})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
