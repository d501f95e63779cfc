package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-scan/internal/cart"
	"github.com/noah-isme/kasir-scan/internal/catalog"
	"github.com/noah-isme/kasir-scan/internal/config"
	"github.com/noah-isme/kasir-scan/internal/display"
	"github.com/noah-isme/kasir-scan/internal/events"
	"github.com/noah-isme/kasir-scan/internal/health"
	"github.com/noah-isme/kasir-scan/internal/obs"
	"github.com/noah-isme/kasir-scan/internal/payment"
	"github.com/noah-isme/kasir-scan/internal/ratelimit"
	"github.com/noah-isme/kasir-scan/internal/scan"
	"github.com/noah-isme/kasir-scan/internal/security"
	"github.com/noah-isme/kasir-scan/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	tracing := obs.TracingConfig{
		ServiceName:   "kasir-scan",
		Endpoint:      cfg.OTLPEndpoint,
		Exporter:      cfg.TracingExporter,
		SamplingRatio: cfg.TracingSampleRatio,
		Environment:   cfg.AppEnv,
	}
	shutdownTracer, err := obs.InitTracer(ctx, tracing)
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		tracing.Exporter = "none"
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	deps, err := openDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close()

	hub := display.NewHub(&logger)
	bus := &events.Bus{Notifiers: []events.Notifier{hub, events.LogNotifier{Logger: &logger}}}

	manager, err := session.NewManager(ctx, session.Options{
		Catalog: deps.Catalog,
		Config: session.Config{
			Seller:        session.Seller{Name: cfg.SellerName, GSTIN: cfg.SellerGSTIN, Email: cfg.SellerEmail},
			ShipmentType:  cfg.ShipmentType,
			InvoicePrefix: cfg.InvoicePrefix,
			Payee:         payment.Payee{Handle: cfg.PayeeUPIID, Name: cfg.PayeeName, Note: cfg.PayeeNote},
			Currency:      cfg.CurrencyCode,
			QR:            payment.QRCode{BaseURL: cfg.QRServiceURL, Size: cfg.QRSize},
		},
		Bus:      bus,
		Feedback: feedback(cfg, logger),
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("start session")
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	}

	var scanLimiter ratelimit.Limiter = ratelimit.NewMemory(cfg.ScanRateLimit, cfg.ScanRateWindow)
	if deps.Redis != nil {
		scanLimiter = ratelimit.Sliding{Client: deps.Redis, Prefix: "kasir:ratelimit:scans:", Window: cfg.ScanRateWindow, Max: cfg.ScanRateLimit}
	}
	scanLimit := ratelimit.Handler{
		Limiter: scanLimiter,
		OnError: func(err error) { logger.Warn().Err(err).Msg("scan rate limiter unavailable") },
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Catalog: deps.Catalog})
	sessionHandler := session.NewHandler(session.HandlerConfig{Manager: manager, Validator: validate})
	displayHandler := display.NewHandler(display.HandlerConfig{
		Hub: hub,
		Snapshot: func(context.Context) (any, error) {
			return manager.Current().View()
		},
	})
	healthHandler := health.Handler{Probes: deps.Probes(), Timeout: 500 * time.Millisecond}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(cfg.HTTPBodyLimitBytes))
	r.Use(obs.RouteSpanMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger, Skip: []string{"/health", "/metrics"}}.Middleware)
	if cfg.SecureHeaders {
		r.Use(security.Headers{EnableHSTS: cfg.SecureHSTS, ImageSources: []string{cfg.QRServiceURL}}.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.PprofEnabled {
		r.Route("/debug", func(d chi.Router) {
			if cfg.PprofUser != "" {
				d.Use(middleware.BasicAuth("restricted", map[string]string{cfg.PprofUser: cfg.PprofPass}))
			}
			d.Mount("/", middleware.Profiler())
		})
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/catalog", catalogHandler.List)
		v.Get("/catalog/{code}", catalogHandler.Get)
		v.Route("/session", func(s chi.Router) {
			sessionHandler.Routes(s, scanLimit.Middleware)
		})
		v.Get("/display/stream", displayHandler.Stream)
	})

	var handler http.Handler = r
	if tracing.Enabled() {
		handler = obs.TraceHandler(r, "kasir-scan")
	}

	streams, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streams },
	}

	if cfg.ScanSource == config.ScanSourceStdin {
		go runStdinSource(ctx, manager, logger)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("catalog", cfg.CatalogSource).Str("scan_source", cfg.ScanSource).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	health.SetReady(false)
	cancelStreams()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// runStdinSource treats every line on stdin as one raw decode, as typed by a
// keyboard-wedge scanner.
func runStdinSource(ctx context.Context, manager *session.Manager, logger zerolog.Logger) {
	decodes := scan.ReadLines(ctx, os.Stdin, time.Now)
	err := scan.Pump(ctx, decodes, func(ctx context.Context, d scan.Decode) {
		outcome, err := manager.Current().Observe(ctx, d)
		switch {
		case err != nil:
			logger.Error().Err(err).Str("code", d.Text).Msg("apply decode")
		case outcome.Notice != "":
			logger.Warn().Str("code", d.Text).Msg(outcome.Notice)
		case outcome.Added:
			logger.Info().Str("code", d.Text).Int("quantity", outcome.Line.Quantity).Msg("item scanned")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("stdin decode source stopped")
		return
	}
	logger.Info().Msg("stdin decode source closed")
}

// feedback rings the terminal bell for the operator when scans arrive on
// stdin; over HTTP the client plays its own sound.
func feedback(cfg *config.Config, logger zerolog.Logger) session.FeedbackFunc {
	return func(_ context.Context, line cart.Line) {
		logger.Debug().Str("code", line.Code).Int("quantity", line.Quantity).Msg("scan feedback")
		if cfg.ScanSource == config.ScanSourceStdin {
			fmt.Fprint(os.Stderr, "\a")
		}
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
