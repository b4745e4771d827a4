package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/avelier/event-ticketing/internal/handler"    // import the handlers that implement business logic
	"github.com/avelier/event-ticketing/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated attendee endpoints.  The
// home listing sits behind the Redis response cache; the reservation POST
// sits behind the token bucket.  Either middleware may be nil when its
// backing service is unavailable, in which case the route is registered
// bare.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, r *handler.ReservationHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/user")

	if cache != nil {
		g.GET("/home", p.Home, cache)
	} else {
		g.GET("/home", p.Home)
	}
	g.GET("/event/:id", p.EventPage)
	if limit != nil {
		g.POST("/event/:id", r.Reserve, limit)
	} else {
		g.POST("/event/:id", r.Reserve)
	}
}

// RegisterAuth registers the organiser account routes.  Register, login,
// refresh and logout do not require a session; /organiser/me runs behind
// the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/organiser")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout validates the refresh token or bearer itself so an expired
	// session can still be revoked.
	g.POST("/logout", a.Logout)

	auth := e.Group("/organiser")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleOrganiser))
	auth.GET("/me", a.Me)
}

// RegisterOrganiser registers event and ticket management endpoints.
// All routes require a valid JWT carrying the ORGANISER role; ownership
// of the targeted event is checked per request in the handlers.
func RegisterOrganiser(e *echo.Echo, h *handler.OrganiserHandler, jwtSecret string) {
	g := e.Group(
		"/organiser",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleOrganiser),
	)
	g.GET("/home", h.Home)
	g.GET("/settings", h.GetSettings)
	g.POST("/settings", h.UpdateSettings)
	g.POST("/create", h.Create)
	g.POST("/edit/:eventId", h.Update)
	g.POST("/publish/:eventId", h.Publish)
	g.POST("/delete/:eventId", h.Delete)
	g.POST("/ticket/:eventId", h.AddTicket)
	g.POST("/editTicket/:eventId/:ticketId", h.UpdateTicket)
	g.POST("/deleteTicket/:eventId/:ticketId", h.DeleteTicket)
	g.GET("/bookings/:eventId", h.ListBookings)
}
