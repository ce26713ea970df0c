package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
	Metrics       echo.MiddlewareFunc
	// LoginRateLimit is requests per second per client IP on register/login; zero disables it.
	LoginRateLimit float64
}

type Handlers struct {
	Auth         *AuthHandler
	Applications *ApplicationsHandler
	Access       *AccessHandler
	Users        *UsersHandler
	Tickets      *TicketsHandler
	Chat         *ChatHandler
	Health       *HealthHandler
	Metrics      echo.HandlerFunc
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	for _, mw := range []echo.MiddlewareFunc{m.XRay, m.Metrics, m.RequestLogger} {
		if mw != nil {
			e.Use(mw)
		}
	}
	return e
}

// NewRouter mounts every resource under /api. Only register, login, health
// and metrics are reachable without a bearer token.
func NewRouter(h Handlers, m Middleware) *echo.Echo {
	e := newEcho(m)

	if h.Health != nil {
		e.GET("/healthz", h.Health.Check)
	}
	if h.Metrics != nil {
		e.GET("/metrics", h.Metrics)
	}

	api := e.Group("/api")

	public := api.Group("/auth")
	if m.LoginRateLimit > 0 {
		public.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(m.LoginRateLimit))))
	}
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	protected := api.Group("")
	if m.Auth != nil {
		protected.Use(m.Auth)
	}
	protected.GET("/auth/me", h.Auth.Me)

	apps := protected.Group("/applications")
	apps.GET("", h.Applications.List)
	apps.POST("", h.Applications.Create)
	apps.POST("/create", h.Applications.Create)
	apps.GET("/:id", h.Applications.Get)
	apps.PUT("/:id", h.Applications.Update)
	apps.DELETE("/:id", h.Applications.Delete)

	access := protected.Group("/access")
	access.GET("", h.Access.List)
	access.POST("", h.Access.Create)
	access.GET("/:id", h.Access.Get)
	access.PUT("/:id", h.Access.Update)
	access.DELETE("/:id", h.Access.Delete)

	users := protected.Group("/users")
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	tickets := protected.Group("/tickets")
	tickets.GET("", h.Tickets.List)
	tickets.POST("", h.Tickets.Create)
	tickets.POST("/create", h.Tickets.Create)
	tickets.GET("/:id", h.Tickets.Get)
	tickets.PUT("/:id", h.Tickets.Update)
	tickets.DELETE("/:id", h.Tickets.Delete)

	protected.POST("/chat", h.Chat.Ask)

	return e
}
