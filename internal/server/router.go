package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/eaas-dev/eaas-backend/internal/handlers"
	"github.com/eaas-dev/eaas-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName    string
	AllowOrigins   []string
	UploadsDir     string
	TracingEnabled bool

	AuthMiddleware *middleware.AuthMiddleware
	RouteGuard     *middleware.RouteGuard
	AuthHandler    *handlers.AuthHandler
	ExperimentsH   *handlers.ExperimentHandler
	RubricsH       *handlers.RubricHandler
	AnalyticsH     *handlers.AnalyticsHandler
	ProfileH       *handlers.ProfileHandler
	UploadH        *handlers.UploadHandler
	UserH          *handlers.UserHandler
	HealthH        *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthH.Check)
	if dir := strings.TrimSpace(cfg.UploadsDir); dir != "" {
		router.Static("/uploads", dir)
	}
	if cfg.RouteGuard != nil {
		router.Use(cfg.RouteGuard.Handler())
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signin", cfg.AuthHandler.SignIn)
		auth.POST("/signup", cfg.AuthHandler.SignUp)
		auth.POST("/signout", cfg.AuthHandler.SignOut)
		auth.POST("/google", cfg.AuthHandler.Google)
		auth.GET("/callback", cfg.AuthHandler.Callback)
		auth.POST("/send-verification", cfg.AuthHandler.SendVerification)
		auth.GET("/verify-email", cfg.AuthHandler.VerifyEmail)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	experiments := protected.Group("/experiments")
	experiments.GET("", cfg.ExperimentsH.List)
	experiments.POST("", cfg.ExperimentsH.Create)
	experiments.GET("/:id", cfg.ExperimentsH.Get)
	experiments.PUT("/:id", cfg.ExperimentsH.Update)
	experiments.DELETE("/:id", cfg.ExperimentsH.Delete)
	experiments.POST("/:id/run", cfg.ExperimentsH.Run)

	rubrics := protected.Group("/rubrics")
	rubrics.GET("", cfg.RubricsH.List)
	rubrics.POST("", cfg.RubricsH.Create)
	rubrics.GET("/templates", cfg.RubricsH.Templates)
	rubrics.GET("/:id", cfg.RubricsH.Get)
	rubrics.PUT("/:id", cfg.RubricsH.Update)
	rubrics.DELETE("/:id", cfg.RubricsH.Delete)
	rubrics.POST("/:id/clone", cfg.RubricsH.Clone)

	analytics := protected.Group("/analytics")
	analytics.GET("/overview", cfg.AnalyticsH.Overview)
	analytics.GET("/trends", cfg.AnalyticsH.Trends)
	analytics.GET("/comparisons", cfg.AnalyticsH.Comparisons)
	analytics.GET("/export", cfg.AnalyticsH.Export)

	profile := protected.Group("/profile")
	profile.GET("", cfg.ProfileH.Get)
	profile.POST("", cfg.ProfileH.Save)
	profile.POST("/avatar", cfg.ProfileH.Avatar)

	upload := protected.Group("/upload")
	upload.POST("/dataset", cfg.UploadH.UploadDataset)
	upload.GET("", cfg.UploadH.List)
	upload.DELETE("/:id", cfg.UploadH.Delete)

	protected.GET("/user/export-data", cfg.UserH.ExportData)
	protected.DELETE("/auth/delete-account", cfg.UserH.DeleteAccount)

	return router
}
