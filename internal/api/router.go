package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/realspark/console-gateway/internal/api/handler"
	"github.com/realspark/console-gateway/internal/api/middleware"
	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
	"github.com/realspark/console-gateway/internal/core/service"
)

// Dependencies carries everything the router wires together. The session
// container must already be initialized: composition order in cmd/server is
// what guarantees no guard ever evaluates before rehydration completes.
type Dependencies struct {
	Session  *service.SessionContainer
	Login    *service.LoginService
	Notifier ports.Notifier
	Feature  ports.FeatureGateway
	Activity ports.ActivityRepository

	// Health probe handles; either may be nil when the backend is disabled.
	Mongo *mongo.Database
	Redis *redis.Client

	LoginRPM int
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("console"))

	// --- Guards ---
	authGate := middleware.SessionGate(deps.Session, deps.Notifier)
	adminGate := middleware.RequireRole(deps.Session, deps.Notifier, domain.RoleAdmin)

	// --- Session lifecycle ---
	sessionHandler := handler.NewSessionHandler(deps.Login, deps.Session, deps.Notifier)
	throttle := middleware.NewLoginThrottle(deps.LoginRPM)

	e.POST("/session/login", sessionHandler.Login, throttle.Middleware())
	e.POST("/session/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Current)

	// --- Feature areas (thin proxies to the platform API) ---
	usersProxy := handler.NewProxyHandler(deps.Feature, deps.Notifier, "users")
	profilesProxy := handler.NewProxyHandler(deps.Feature, deps.Notifier, "profiles")
	configsProxy := handler.NewProxyHandler(deps.Feature, deps.Notifier, "configurations")
	analyticsProxy := handler.NewProxyHandler(deps.Feature, deps.Notifier, "analytics")
	accountProxy := handler.NewProxyHandler(deps.Feature, deps.Notifier, "account")

	e.Any("/admin/users", usersProxy.Handle, adminGate)
	e.Any("/admin/users/*", usersProxy.Handle, adminGate)
	e.Any("/system-configurations", configsProxy.Handle, adminGate)
	e.Any("/system-configurations/*", configsProxy.Handle, adminGate)
	e.Any("/profiles", profilesProxy.Handle, authGate)
	e.Any("/profiles/*", profilesProxy.Handle, authGate)
	e.Any("/analytics/admin", analyticsProxy.Handle, adminGate)
	e.Any("/analytics/*", analyticsProxy.Handle, authGate)
	e.Any("/account", accountProxy.Handle, authGate)
	e.Any("/account/*", accountProxy.Handle, authGate)

	// --- Console activity trail ---
	activityHandler := handler.NewActivityHandler(deps.Activity)
	e.GET("/activity", activityHandler.Recent, adminGate)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
