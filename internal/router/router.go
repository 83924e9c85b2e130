// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/handler"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health
// check, which load balancers and monitoring can probe.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token
// with any known role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked
	// and a new pair is issued.
	g.POST("/refresh", a.Refresh)
	// Logout does not require a JWT; it accepts a JSON body with the
	// refresh_token to invalidate so an expired access token cannot
	// strand a session.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PARTICIPANT", "EXHIBITOR", "ADMIN"),
	)
	auth.GET("/me", a.Me)
}

// RegisterParticipant registers participant-scoped endpoints under
// /v1/participant.  All routes require a valid JWT and the PARTICIPANT
// role.  The claim endpoint additionally carries the token-bucket rate
// limiter so a stuck client retrying in a loop cannot hammer the
// conditional update path.
func RegisterParticipant(e *echo.Echo, h *handler.ParticipantHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/participant",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PARTICIPANT"),
	)
	g.GET("/coupons", h.ListCoupons)
	g.POST("/coupons/claim", h.ClaimCoupon, limiter)
}

// RegisterExhibitor registers exhibitor-scoped endpoints under
// /v1/exhibitor.  All routes require a valid JWT and the EXHIBITOR
// role; any employee of a company may act for it.
func RegisterExhibitor(e *echo.Echo, h *handler.ExhibitorHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/exhibitor",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("EXHIBITOR"),
	)
	g.GET("/allocations", h.ListAllocations)
	g.POST("/allocations/claim", h.ClaimBulk, limiter)
	g.GET("/claims", h.ListClaims)
}

// RegisterAdmin registers the operational endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/slots", h.CreateMealSlot)
	g.GET("/slots", h.ListMealSlots)
	g.POST("/companies", h.CreateCompany)
	g.GET("/companies", h.ListCompanies)
	g.GET("/participants", h.ListParticipants)
	g.POST("/participants/:id/provision", h.ProvisionCoupons)
	g.GET("/coupons", h.ListCoupons)
	g.POST("/coupons/:id/reset", h.ResetCoupon)
	g.GET("/allocations", h.ListAllocationClaims)
}
