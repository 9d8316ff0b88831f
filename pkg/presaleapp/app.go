// Package presaleapp assembles the presale services for standalone serving
// or embedding into an existing chi router.
package presaleapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gagliardetto/solana-go"

	"github.com/cryptoedu/presale-server/internal/circuitbreaker"
	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/content"
	"github.com/cryptoedu/presale-server/internal/httpserver"
	"github.com/cryptoedu/presale-server/internal/intake"
	"github.com/cryptoedu/presale-server/internal/lifecycle"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/presale"
	"github.com/cryptoedu/presale-server/internal/quote"
	"github.com/cryptoedu/presale-server/internal/transfer"
	"github.com/cryptoedu/presale-server/internal/walletwatch"
)

// App wires the presale components for reuse or standalone serving.
type App struct {
	Config  *config.Config
	Chain   transfer.Chain
	Quotes  *quote.Service
	Manager *presale.Manager
	Intake  *intake.Service
	Content *content.Repository
	Watcher *walletwatch.Watcher

	router           chi.Router
	logger           zerolog.Logger
	resourceManager  *lifecycle.Manager
	metricsCollector *metrics.Metrics
	cancelBackground context.CancelFunc
}

// Option configures App construction.
type Option func(*options)

type options struct {
	chain  transfer.Chain
	router chi.Router
}

// WithChain injects a custom chain client, replacing the RPC-backed default.
func WithChain(chain transfer.Chain) Option {
	return func(o *options) {
		o.chain = chain
	}
}

// WithRouter registers routes onto an existing chi.Router instead of a new one.
func WithRouter(router chi.Router) Option {
	return func(o *options) {
		o.router = router
	}
}

// NewApp assembles the presale services for embedding.
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("presaleapp: config required")
	}

	optState := options{}
	for _, opt := range opts {
		opt(&optState)
	}

	app := &App{
		Config:          cfg,
		resourceManager: lifecycle.NewManager(),
	}

	app.logger = logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "presale-server",
		Environment: cfg.Logging.Environment,
	})

	collector := metrics.New(prometheus.DefaultRegisterer)
	app.metricsCollector = collector

	breakers := circuitbreaker.NewManagerFromConfig(cfg.CircuitBreaker)

	if optState.chain != nil {
		app.Chain = optState.chain
	} else {
		chain, err := transfer.NewRPCChain(ctx, cfg.Solana, breakers, collector)
		if err != nil {
			return nil, fmt.Errorf("init chain client: %w", err)
		}
		app.Chain = chain
		app.resourceManager.RegisterFunc("chain-client", func() error {
			chain.Close()
			return nil
		})
	}

	treasury, err := solana.PublicKeyFromBase58(cfg.Presale.TreasuryAddress)
	if err != nil {
		return nil, fmt.Errorf("parse treasury address: %w", err)
	}

	app.Quotes = quote.NewService(cfg.Quote, cfg.Presale, breakers, collector)

	store := presale.NewStore(cfg.Presale.SessionTTL.Duration)
	app.resourceManager.Register("session-store", store)

	exec := transfer.NewExecutor(app.Chain, treasury, presale.FeeReserveLamports(cfg.Presale), app.Quotes, collector)
	app.Manager = presale.NewManager(store, app.Chain, exec, cfg.Presale, collector, app.logger)

	app.Watcher = walletwatch.NewWatcher(app.Chain.GetBalance, cfg.WalletWatch, app.logger)
	app.Intake = intake.NewService(cfg.Intake.SubmitDelay.Duration, collector, app.logger)

	repo, err := content.NewRepository(cfg.Content, cfg.Presale, collector, app.logger)
	if err != nil {
		return nil, fmt.Errorf("init content repository: %w", err)
	}
	app.Content = repo

	if optState.router != nil {
		app.router = optState.router
	} else {
		app.router = chi.NewRouter()
	}

	httpserver.ConfigureRouter(app.router, httpserver.Deps{
		Config:  cfg,
		Quotes:  app.Quotes,
		Manager: app.Manager,
		Intake:  app.Intake,
		Content: app.Content,
		Watcher: app.Watcher,
		Metrics: collector,
		Logger:  app.logger,
	})

	return app, nil
}

// Start launches the background loops: the periodic price refresh and the
// wallet snapshot poller. An initial price fetch happens synchronously so
// the service does not come up degraded; a fetch failure is logged and the
// refresh loop keeps trying.
func (a *App) Start(ctx context.Context) {
	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancelBackground = cancel

	if _, err := a.Quotes.Refresh(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("initial price fetch failed, serving degraded until refresh succeeds")
	}

	a.Quotes.Start(bg)
	a.Watcher.Start(bg)
}

// Router returns the chi router with presale routes registered.
func (a *App) Router() chi.Router {
	return a.router
}

// Handler exposes the router as an http.Handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// Close stops background loops and releases resources owned by the app.
func (a *App) Close() error {
	if a.cancelBackground != nil {
		a.cancelBackground()
	}
	a.Quotes.Stop()
	a.Watcher.Stop()
	return a.resourceManager.Close()
}

// Config is re-exported for consumers embedding the presale server.
type Config = config.Config

// LoadConfig wraps the internal loader for embedding use.
func LoadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}
