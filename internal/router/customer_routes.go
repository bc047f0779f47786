package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1. All
// routes require a valid JWT and the CUSTOMER role. Customers open a seat
// selection for a showing, toggle seats, check out and view their tickets.
func RegisterCustomer(e *echo.Echo, s *handler.SelectionHandler, t *handler.TicketHandler, g Guards) {
	grp := e.Group("/v1", g.chain(
		middleware.JWTAuth(g.JWTSecret),
		middleware.RequireRole(model.RoleCustomer),
		g.RateLimit,
	)...)

	grp.POST("/showings/:id/selection", s.Open)
	grp.GET("/selection", s.Get)
	grp.DELETE("/selection", s.Cancel)
	grp.PUT("/selection/count", s.SetCount)
	grp.POST("/selection/seats", s.Toggle)
	grp.POST("/selection/checkout", s.Checkout)

	grp.GET("/my-tickets", t.MyTickets)
	grp.GET("/tickets/:id", t.GetTicket)
}
