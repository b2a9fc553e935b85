package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/atongani/market-client/docs"
	"github.com/atongani/market-client/internal/api/handler"
	"github.com/atongani/market-client/internal/api/middleware"
	"github.com/atongani/market-client/internal/core/domain"
)

// AuthService covers both the auth routes and the identity check.
type AuthService interface {
	handler.AuthService
	middleware.IdentityResolver
}

// Sessions is the console's view of the session store.
type Sessions interface {
	Present() bool
	Token() string
}

// Deps holds everything the console routes need. Mongo, Redis and History
// are optional.
type Deps struct {
	Auth          AuthService
	Sessions      Sessions
	Orders        handler.OrderService
	History       handler.TransitionHistory
	NewOrdersView func() handler.OrdersStream
	Backend       handler.BackendPinger
	Mongo         *mongo.Database
	Redis         redis.Cmdable
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "atongani",
		Subsystem:  "console",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions)
	dashboardHandler := handler.NewDashboardHandler()
	orderHandler := handler.NewOrderHandler(d.Orders, d.History, d.NewOrdersView, d.Log)

	// --- Public routes ---
	e.GET("/", dashboardHandler.Welcome)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/register/customer", authHandler.RegisterCustomer)
	e.POST("/register/farmer", authHandler.RegisterFarmer)
	e.POST("/logout", authHandler.Logout)

	// --- Dashboard: session present, then identity confirmed by the backend ---
	dash := e.Group("/dashboard",
		middleware.Guard(d.Sessions),
		middleware.Identity(d.Auth, d.Sessions, d.Log),
	)
	customer := middleware.RBAC(domain.RoleCustomer)
	farmer := middleware.RBAC(domain.RoleFarmer)

	dash.GET("", dashboardHandler.Show)
	dash.GET("/orders", orderHandler.Mine, customer)
	dash.GET("/orders/stream", orderHandler.Stream, customer)
	dash.POST("/orders/checkout", orderHandler.Checkout, customer)
	dash.GET("/orders/pending", orderHandler.Pending, farmer)
	dash.POST("/orders/:id/approve", orderHandler.Approve, farmer)
	dash.POST("/orders/:id/reject", orderHandler.Reject, farmer)
	dash.GET("/orders/:id", orderHandler.Detail)
	dash.GET("/orders/:id/history", orderHandler.History)
	dash.RouteNotFound("/*", toLogin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Backend, d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Unknown routes go back to login.
	e.RouteNotFound("/*", toLogin)

	return e
}

func toLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, middleware.LoginPath)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
