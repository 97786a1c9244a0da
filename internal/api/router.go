package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sirpyerre/storefront-api/internal/api/handler"
	"github.com/sirpyerre/storefront-api/internal/api/middleware"
	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// Deps carries everything the router needs to build its handlers.
type Deps struct {
	Catalog   ports.CatalogService
	Orders    ports.OrderService
	Sales     ports.SaleService
	Users     ports.UserService
	Addresses ports.AddressService
	Suppliers ports.SupplierService

	Logger zerolog.Logger
	// JWTSecret enables bearer auth and role checks. Empty disables both.
	JWTSecret      string
	RequestTimeout time.Duration
	CORSOrigins    []string
	Readiness      []handler.DependencyCheck
}

// NewRouter builds the Echo instance with middleware and all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// Each router gets its own registry for HTTP metrics; the domain
	// counters live on the default registry and are gathered alongside.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, handler.HeaderIdempotencyKey,
			},
		}))
	}
	if deps.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout: deps.RequestTimeout,
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Access control ---
	authenticated := func() []echo.MiddlewareFunc {
		if deps.JWTSecret == "" {
			return nil
		}
		return []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret)}
	}
	restrictTo := func(roles ...domain.Role) []echo.MiddlewareFunc {
		if deps.JWTSecret == "" {
			return nil
		}
		return []echo.MiddlewareFunc{middleware.RBAC(roles...)}
	}
	guard := func(roles ...domain.Role) []echo.MiddlewareFunc {
		return append(authenticated(), restrictTo(roles...)...)
	}
	admin := domain.RoleAdministrator

	// --- Auth routes ---
	users := handler.NewUserHandler(deps.Users)
	auth := e.Group("/auth")
	auth.POST("/register", users.Register)
	auth.POST("/login", users.Login)
	auth.POST("/recovery", users.RequestRecovery)
	auth.POST("/recovery/reset", users.ResetPassword)

	// --- Users ---
	ug := e.Group("/users", guard(admin)...)
	ug.POST("", users.Create)
	ug.GET("", users.List)
	ug.GET("/:id", users.Get)
	ug.PUT("/:id", users.Update)
	ug.PATCH("/:id/status", users.SetStatus)

	// --- Products: reads are public ---
	products := handler.NewProductHandler(deps.Catalog)
	pg := e.Group("/products")
	pg.GET("", products.List)
	pg.GET("/:id", products.Get)
	pg.POST("", products.Create, guard(admin)...)
	pg.PUT("/:id", products.Update, guard(admin)...)
	pg.PATCH("/:id/status", products.SetStatus, guard(admin)...)

	// --- Suppliers ---
	suppliers := handler.NewSupplierHandler(deps.Suppliers)
	sg := e.Group("/suppliers", guard(admin)...)
	sg.POST("", suppliers.Create)
	sg.GET("", suppliers.List)
	sg.GET("/:id", suppliers.Get)
	sg.PUT("/:id", suppliers.Update)
	sg.PATCH("/:id/status", suppliers.SetStatus)

	// --- Addresses ---
	addresses := handler.NewAddressHandler(deps.Addresses)
	ag := e.Group("/addresses", authenticated()...)
	ag.POST("", addresses.Create)
	ag.GET("", addresses.ListByUser)
	ag.GET("/:id", addresses.Get)
	ag.PUT("/:id", addresses.Update)

	// --- Orders ---
	orders := handler.NewOrderHandler(deps.Orders)
	og := e.Group("/orders", authenticated()...)
	og.POST("", orders.Create)
	og.GET("", orders.List)
	og.GET("/:id", orders.Get)
	og.PUT("/:id/cancel", orders.Cancel)
	og.PUT("/:id", orders.Assign, restrictTo(admin)...)
	og.PATCH("/estadoPedido/:id", orders.SetStatus, restrictTo(admin, domain.RoleDeliveryAgent)...)
	og.GET("/asignados/:agentId", orders.ListByAgent, restrictTo(admin, domain.RoleDeliveryAgent)...)

	// --- Sales ---
	sales := handler.NewSaleHandler(deps.Sales)
	slg := e.Group("/sales", guard(admin, domain.RoleCashier)...)
	slg.POST("", sales.Create)
	slg.GET("", sales.List)
	slg.GET("/:id", sales.Get)
	slg.PUT("/:id/inactivar", sales.Deactivate)
	slg.PATCH("/:id/status", sales.SetStatus)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Status >= 400:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
