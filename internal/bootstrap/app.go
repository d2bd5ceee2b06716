package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"zuschusscheck-web/internal/analysis"
	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/checkout"
	"zuschusscheck-web/internal/pages"
	"zuschusscheck-web/internal/paywidget"
	"zuschusscheck-web/internal/resultstore"
	"zuschusscheck-web/internal/results"
	"zuschusscheck-web/internal/shared/config"
	"zuschusscheck-web/internal/shared/server"
	"zuschusscheck-web/internal/shared/server/middleware"
	"zuschusscheck-web/internal/shared/telemetry"
	"zuschusscheck-web/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine

	Store   resultstore.Store
	Backend *backend.Client
	Widgets *paywidget.Registry

	AnalysisService *analysis.Service
	CheckoutService *checkout.Service
	ResultsLoader   *results.Loader
	ReportService   *results.ReportService

	PagesHandler    *pages.Handler
	UploadHandler   *uploads.Handler
	ResultsHandler  *results.Handler
	CheckoutHandler *checkout.Handler

	closers []func() error
}

// Option overrides a dependency before routes are wired. Tests use it to
// point the app at an in-process store.
type Option func(*App)

// WithStore replaces the configured result store.
func WithStore(s resultstore.Store) Option {
	return func(a *App) { a.Store = s }
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if app.Store == nil {
		store, closer, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Store = store
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	var pinger server.Pinger
	if p, ok := app.Store.(server.Pinger); ok {
		pinger = p
	}
	router, err := server.NewRouter(server.RouterDeps{
		Config:          cfg,
		PagesHandler:    app.PagesHandler,
		UploadHandler:   app.UploadHandler,
		ResultsHandler:  app.ResultsHandler,
		CheckoutHandler: app.CheckoutHandler,
		Store:           pinger,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})
	if err != nil {
		return nil, err
	}
	app.Router = router

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildStore(ctx context.Context, cfg config.Config) (resultstore.Store, func() error, error) {
	switch cfg.ResultStore {
	case "redis":
		store := resultstore.NewRedisStore(resultstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.redis.unavailable", map[string]any{
					"addr":  cfg.RedisAddr,
					"error": err,
				})
				return resultstore.NewMemoryStore(), nil, nil
			}
			return nil, nil, fmt.Errorf("connect result store: %w", err)
		}
		telemetry.Info("bootstrap.store", map[string]any{"type": "redis", "addr": cfg.RedisAddr})
		return store, store.Close, nil
	default:
		telemetry.Info("bootstrap.store", map[string]any{"type": "memory"})
		return resultstore.NewMemoryStore(), nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	app.Backend = backend.NewClient(cfg.APIOrigin, cfg.BackendTimeout)
	app.Widgets = paywidget.NewRegistry()

	validator := uploads.NewValidator(cfg.MaxUploadBytes)
	app.AnalysisService = analysis.NewService(app.Backend)
	app.UploadHandler = uploads.NewHandler(validator, app.AnalysisService, app.Store)

	app.CheckoutService = checkout.NewService(app.Backend, cfg.PaymentAmount, cfg.PaymentCurrency)
	renderer, err := paywidget.NewHTMLRenderer()
	if err != nil {
		return err
	}
	loader := paywidget.ScriptLoader{
		ClientID: cfg.PayPalClientID,
		Currency: app.CheckoutService.Currency,
		Locale:   cfg.PayPalLocale,
	}
	app.CheckoutHandler = checkout.NewHandler(app.CheckoutService, app.Store, app.Widgets, loader, renderer)

	app.ResultsLoader = results.NewLoader(app.Backend)
	app.ReportService = results.NewReportService(app.Backend, cfg.ReviewCode)
	app.ResultsHandler = results.NewHandler(app.ResultsLoader, app.ReportService, app.Store, app.CheckoutHandler)

	content, err := pages.LoadContent()
	if err != nil {
		return err
	}
	app.PagesHandler = pages.NewHandler(content, app.CheckoutService.Price(), validator.LimitLabel())

	return nil
}
