// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-storefront/internal/config"
	"github.com/iliyamo/cinema-storefront/internal/handler"
	"github.com/iliyamo/cinema-storefront/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Drafts   *handler.DraftHandler
	Bookings *handler.BookingHandler
	Admin    *handler.AdminHandler
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, rdb *redis.Client) {
	e.GET("/healthz", handler.Health(rdb))
}

// RegisterAuth mounts login, registration and the session endpoints.
// /v1/auth is open; /v1/me requires an access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1/me", middleware.JWTAuth(jwtSecret), middleware.RequireRole("CUSTOMER", "ADMIN"))
	me.GET("", a.Me)
	me.PUT("/theme", a.SetTheme)
}

// RegisterPublic mounts catalog browsing behind the response cache.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/movies", p.ListMovies)
	g.GET("/movies/facets", p.Facets)
	g.GET("/movies/:id", p.GetMovie)
	g.GET("/showtimes/:id", p.GetShowtime)
	// quotes depend on the query string only, so they are not cached
	e.GET("/v1/showtimes/:id/quote", p.Quote)
}

// RegisterCustomer mounts the checkout flow and booking history.  Both
// customers and admins may book.
func RegisterCustomer(e *echo.Echo, d *handler.DraftHandler, b *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
		limit,
	)
	g.POST("/showtimes/:id/drafts", d.Start)
	g.GET("/drafts/:id", d.Get)
	g.POST("/drafts/:id/seats/:seat/toggle", d.Toggle)
	g.POST("/drafts/:id/checkout", d.Checkout)
	g.PUT("/drafts/:id/method", d.ChangeMethod)
	g.POST("/drafts/:id/back", d.Back)
	g.POST("/drafts/:id/pay", d.Pay)
	g.POST("/drafts/:id/retry", d.Retry)
	g.DELETE("/drafts/:id", d.Discard)

	g.GET("/my-bookings", b.List)
	g.GET("/my-bookings/:id", b.Get)
	g.POST("/my-bookings/:id/cancel", b.Cancel)
}

// RegisterAdmin mounts the dashboard for the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))
	g.GET("/stats", a.Stats)
	g.GET("/movies", a.ListMovies)
	g.POST("/movies", a.CreateMovie)
	g.DELETE("/movies/:id", a.DeleteMovie)
}

// Register mounts every route group.  A nil rdb disables caching and
// rate limiting.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	RegisterRoutes(e, rdb)
	RegisterAuth(e, h.Auth, cfg.JWTSecret)
	RegisterPublic(e, h.Catalog, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	RegisterCustomer(e, h.Drafts, h.Bookings, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	RegisterAdmin(e, h.Admin, cfg.JWTSecret)
}
