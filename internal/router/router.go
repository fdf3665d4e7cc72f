package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/velopark/parking-admin/internal/handler"    // import the handlers that implement business logic
	"github.com/velopark/parking-admin/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login and
	// the two refresh variants.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body, or a Bearer token to revoke
	// every session of the user; it does not require the JWT middleware.
	g.POST("/logout", a.Logout)

	// Protected endpoints live under /v1 and require a valid access token
	// with one of the two back-office roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "OPERATOR"))
	auth.GET("/me", a.Me)
}

// RegisterAdmin registers the back-office endpoints for facilities, sections,
// the bike-type directory and the tariff editor.  All routes require a valid
// JWT; destructive operations additionally require the ADMIN role.  The
// optional cache middleware is applied to read endpoints whose responses
// change rarely; tariff state is always served fresh because it backs a live
// editor.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	cached := func() []echo.MiddlewareFunc { // per-route middleware list for cacheable reads
		if cache == nil {
			return nil
		}
		return []echo.MiddlewareFunc{cache}
	}()

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "OPERATOR"),
	)

	// ---- Facilities ----
	g.POST("/facilities", h.CreateFacility)
	g.GET("/facilities", h.ListFacilities, cached...)
	g.GET("/facilities/:id", h.GetFacility, cached...)
	g.PUT("/facilities/:id", h.UpdateFacility)
	g.PATCH("/facilities/:id", h.UpdateFacility) // allow partial updates via PATCH as well

	// ---- Sections ----
	g.POST("/facilities/:id/sections", h.CreateSection)
	g.GET("/facilities/:id/sections", h.ListSections, cached...)
	g.PUT("/sections/:id", h.UpdateSection)
	g.PATCH("/sections/:id", h.UpdateSection)
	// Toggle whether a section permits a bike type; this is what creates the
	// per-type pricing scopes.
	g.PUT("/sections/:id/bike-types/:type_id", h.SetSectionBikeType)

	// ---- Bike type directory ----
	g.POST("/bike-types", h.CreateBikeType)
	g.GET("/bike-types", h.ListBikeTypes, cached...)
	g.PUT("/bike-types/:id", h.UpdateBikeType)
	g.PATCH("/bike-types/:id", h.UpdateBikeType)

	// ---- Tariff editor ----
	g.GET("/facilities/:id/tariffs", h.GetTariffs)
	g.POST("/facilities/:id/tariffs/preview", h.PreviewTariffs)
	g.PUT("/facilities/:id/tariffs", h.SaveTariffs)

	// Destructive operations are reserved for administrators.
	adm := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	adm.DELETE("/facilities/:id", h.DeleteFacility)
	adm.DELETE("/sections/:id", h.DeleteSection)
	adm.DELETE("/bike-types/:id", h.DeleteBikeType)
}
