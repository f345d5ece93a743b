package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/handlers"
	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/middleware"
	"github.com/eaas-dev/eaas-backend/internal/observability"
	"github.com/eaas-dev/eaas-backend/internal/platform/identity"
	"github.com/eaas-dev/eaas-backend/internal/platform/mailer"
	"github.com/eaas-dev/eaas-backend/internal/server"
	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/store"
)

type Services struct {
	Sessions    services.SessionService
	Profiles    services.ProfileService
	Verify      services.VerificationService
	Experiments services.ExperimentService
	Rubrics     services.RubricsService
	Analytics   services.AnalyticsService
	Uploads     services.UploadService
	Avatars     services.AvatarService
	Bucket      services.BucketService
}

type App struct {
	Log      *logger.Logger
	Cfg      Config
	KV       store.KV
	Router   *gin.Engine
	Services Services

	srv          *http.Server
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	kv, err := resolveStore(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	bucket, err := resolveBucket(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	mail, err := mailer.NewFromEnv(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	svcs, err := wireServices(kv, log, cfg, bucket, mail)
	if err != nil {
		log.Sync()
		return nil, err
	}

	authMW := middleware.NewAuthMiddleware(log, svcs.Sessions)
	guard := middleware.NewRouteGuard(log, svcs.Sessions)

	uploadsDir := ""
	if cfg.StorageMode == StorageModeLocal || cfg.StorageMode == "" {
		uploadsDir = cfg.UploadDir
	}

	router := server.NewRouter(server.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowOrigins:   cfg.CORSOrigins,
		UploadsDir:     uploadsDir,
		TracingEnabled: otelShutdown != nil,

		AuthMiddleware: authMW,
		RouteGuard:     guard,
		AuthHandler:    handlers.NewAuthHandler(svcs.Sessions, svcs.Verify),
		ExperimentsH:   handlers.NewExperimentHandler(svcs.Experiments),
		RubricsH:       handlers.NewRubricHandler(svcs.Rubrics),
		AnalyticsH:     handlers.NewAnalyticsHandler(svcs.Analytics),
		ProfileH:       handlers.NewProfileHandler(svcs.Profiles, svcs.Avatars),
		UploadH:        handlers.NewUploadHandler(svcs.Uploads),
		UserH:          handlers.NewUserHandler(svcs.Sessions, svcs.Profiles, svcs.Experiments, svcs.Rubrics, svcs.Uploads),
		HealthH:        handlers.NewHealthHandler(log, kv, bucket, cfg.Production()),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		KV:           kv,
		Router:       router,
		Services:     svcs,
		otelShutdown: otelShutdown,
	}, nil
}

func wireServices(kv store.KV, log *logger.Logger, cfg Config, bucket services.BucketService, mail mailer.Client) (Services, error) {
	profiles := services.NewProfileService(kv, log)
	verify := services.NewVerificationService(kv, log, mail, cfg.AppBaseURL)

	var sessions services.SessionService
	switch cfg.AuthMode {
	case AuthModeDelegated:
		provider, err := identity.New(log, identity.ConfigFromEnv())
		if err != nil {
			return Services{}, fmt.Errorf("init identity provider: %w", err)
		}
		sessions = services.NewDelegatedSessionService(provider, log)
		// The provider owns verification emails in this mode.
		verify = nil

	case AuthModeSimulated, "":
		var err error
		sessions, err = services.NewSimulatedSessionService(kv, log, profiles, verify, services.SimulatedSessionConfig{
			JWTSecret: cfg.JWTSecretKey,
			AccessTTL: cfg.AccessTokenTTL,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init session service: %w", err)
		}

	default:
		return Services{}, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}

	avatars, err := services.NewAvatarService(log, bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	experiments := services.NewExperimentService(kv, log)

	return Services{
		Sessions:    sessions,
		Profiles:    profiles,
		Verify:      verify,
		Experiments: experiments,
		Rubrics:     services.NewRubricsService(kv, log),
		Analytics:   services.NewAnalyticsService(log, experiments, nil),
		Uploads:     services.NewUploadService(kv, log, bucket),
		Avatars:     avatars,
		Bucket:      bucket,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.srv = &http.Server{
		Addr:              a.Cfg.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.Log.Info("Server listening", "addr", a.Cfg.Addr, "env", a.Cfg.Environment)
	if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
