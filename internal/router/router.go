// Package router wires handlers and middleware onto the Echo instance.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/handler"
    "github.com/gnm-events/backend/internal/middleware"
)

// RegisterRoutes registers routes that need no dependencies beyond Echo
// itself.  Currently that is the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth surface.  Everything lives under
// /api/auth; the cookie middleware runs for the whole group so /me and
// /profile see an identity when the access cookie is valid, while
// login/register/reset stay reachable anonymously.  limiter throttles the
// credential endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler,
    r *handler.ResetHandler, cookieAuth, limiter echo.MiddlewareFunc) {

    g := e.Group("/api/auth", cookieAuth)

    g.POST("/login", a.Login, limiter)
    g.POST("/logout", a.Logout)
    g.POST("/token/refresh", a.Refresh)
    g.POST("/register", a.Register, limiter)
    g.GET("/me", a.Me, middleware.RequireUser())
    g.PATCH("/profile", p.Update, middleware.RequireUser())

    g.POST("/password-reset", r.Request, limiter)
    g.POST("/password-reset/confirm", r.Confirm, limiter)
    g.POST("/password-reset/validate", r.Validate)
}

// RegisterOAuth registers the provider callback.  The path mirrors the
// redirect URI registered with the provider.
func RegisterOAuth(e *echo.Echo, o *handler.OAuthHandler) {
    e.GET("/accounts/google/callback", o.GoogleCallback)
}

// RegisterPublic registers the anonymous form endpoints.
func RegisterPublic(e *echo.Echo, contact *handler.ContactHandler, booking *handler.BookingHandler) {
    e.POST("/api/contact", contact.Create)
    e.POST("/api/bookings", booking.Create)
}

// RegisterAdmin registers the staff-only listings.  The cookie middleware
// establishes the identity and the staff gate checks the flag per request.
func RegisterAdmin(e *echo.Echo, contact *handler.ContactHandler, booking *handler.BookingHandler,
    cookieAuth echo.MiddlewareFunc, users middleware.StaffSource) {

    g := e.Group("/api/admin", cookieAuth, middleware.RequireStaff(users))
    g.GET("/contacts", contact.List)
    g.GET("/bookings", booking.List)
}
