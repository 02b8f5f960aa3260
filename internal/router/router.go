package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"
	"strings"

	"github.com/google/uuid"                             // request ids
	"github.com/labstack/echo/v4"                        // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"      // stock echo middleware
	"github.com/redis/go-redis/v9"                       // shared rate limit and cache backend
	"github.com/sirupsen/logrus"                         // structured logging

	"github.com/iliyamo/medisafe/internal/config"     // app configuration
	"github.com/iliyamo/medisafe/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/medisafe/internal/metrics"    // prometheus collectors
	"github.com/iliyamo/medisafe/internal/middleware" // import middleware for JWT authentication, limits and caching
	"github.com/iliyamo/medisafe/internal/validation" // request validation
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client // optional
	Log       logrus.FieldLogger
	Validator *validation.Validator

	Verifier    middleware.TokenVerifier
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Medications *handler.MedicationHandler
	Reminders   *handler.ReminderHandler
	Goals       *handler.GoalHandler
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = d.Validator
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Log)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{DisableStackAll: true}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.NewRateLimiter(d.RateLimit, d.Redis, d.Log))

	RegisterRoutes(e, d)
	api := e.Group(strings.TrimRight(d.Config.APIPrefix, "/"))
	RegisterAuth(api, d)
	RegisterRecords(api, d)
	return e
}

// RegisterRoutes registers routes that do not require authentication at the
// root: health and metrics.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/health", d.Health.Health, middleware.OptionalAuth(d.Verifier))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers the authentication routes.  Register and login are
// open; profile and verify need a valid token.
func RegisterAuth(api *echo.Group, d Deps) {
	api.GET("/health", d.Health.Health, middleware.OptionalAuth(d.Verifier))

	g := api.Group("/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)

	jwt := middleware.JWTAuth(d.Verifier)
	g.GET("/profile", d.Auth.Profile, jwt)
	g.GET("/verify", d.Auth.Verify, jwt)
}

// RegisterRecords registers the owner-scoped record routes.  All of them
// require a valid JWT; reads are cached per user.
func RegisterRecords(api *echo.Group, d Deps) {
	g := api.Group("",
		middleware.JWTAuth(d.Verifier),
		middleware.NewUserCache(d.Cache, d.Redis),
	)

	// ---- Medications ----
	g.GET("/medications", d.Medications.List)
	g.POST("/medications", d.Medications.Create)
	g.GET("/medications/:id", d.Medications.Get)
	g.PUT("/medications/:id", d.Medications.Update)
	g.DELETE("/medications/:id", d.Medications.Delete)

	// ---- Reminders ----
	g.GET("/reminders", d.Reminders.List)
	g.POST("/reminders", d.Reminders.Create)
	g.GET("/reminders/stats", d.Reminders.Stats) // static segment wins over :id
	g.GET("/reminders/:id", d.Reminders.Get)
	g.PUT("/reminders/:id", d.Reminders.Update)
	g.DELETE("/reminders/:id", d.Reminders.Delete)
	g.POST("/reminders/:id/taken", d.Reminders.Taken)
	g.POST("/reminders/:id/snooze", d.Reminders.Snooze)

	// ---- Goals ----
	g.GET("/goals", d.Goals.List)
	g.POST("/goals", d.Goals.Create)
	g.GET("/goals/:id", d.Goals.Get)
	g.PUT("/goals/:id", d.Goals.Update)
	g.DELETE("/goals/:id", d.Goals.Delete)
}
