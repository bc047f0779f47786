package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterAdmin registers catalog management under /v1/admin. All routes
// require the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, g Guards) {
	grp := e.Group("/v1/admin", g.chain(
		middleware.JWTAuth(g.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
		g.RateLimit,
	)...)

	// Screens
	grp.POST("/screens", h.CreateScreen)
	grp.GET("/screens", h.ListScreens)

	// Movies and their showings
	grp.POST("/movies", h.CreateMovie)
	grp.DELETE("/movies/:id", h.DeleteMovie)
	grp.POST("/movies/:id/showings", h.AddShowing)
	grp.GET("/movies/:id/showings", h.ListShowings)

	// Showings
	grp.GET("/showings", h.AllShowings)
	grp.PUT("/showings/:id", h.UpdateShowing)
	grp.GET("/showings/:id/tickets", h.ShowingTickets)
}
