package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

// Guards are the shared middleware chains applied per route group. Nil
// entries are skipped.
type Guards struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc // applied after authentication so keys see the user
	Cache     echo.MiddlewareFunc // public catalog reads only
}

func (g Guards) chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// profile endpoint /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	pub := e.Group("/v1/auth", g.chain(g.RateLimit)...)
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)
	pub.POST("/refresh", a.Refresh) // rotates the refresh token
	// Logout takes a refresh token or a bearer token, so it is not behind JWTAuth.
	pub.POST("/logout", a.Logout)

	auth := e.Group("/v1", g.chain(middleware.JWTAuth(g.JWTSecret), g.RateLimit)...)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog: now-showing movies,
// showtimes for a date and the seat map of a showing. The seat map is
// never cached since it changes with every booking.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, g Guards) {
	cached := e.Group("/v1/movies", g.chain(g.RateLimit, g.Cache)...)
	cached.GET("", h.ListMovies)
	cached.GET("/:id", h.GetMovie)
	cached.GET("/:id/showings", h.ListShowings)

	live := e.Group("/v1/showings", g.chain(g.RateLimit)...)
	live.GET("/:id/seats", h.SeatMap)
}
