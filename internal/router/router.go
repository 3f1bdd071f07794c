package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework for routing

    "github.com/visually-speaking/matchmaking/internal/handler"    // handlers implementing the matchmaking surface
    "github.com/visually-speaking/matchmaking/internal/middleware" // JWT, role, rate-limit and cache middleware
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers and monitoring to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterMatchmaking registers the customer-facing queue endpoints
// under /v1/events/:id/queue.  Every route requires a valid access
// token with the CUSTOMER or ADMIN role; the rate limiter sits in
// front of all of them because join and next-match drive the pairing
// transaction.
func RegisterMatchmaking(e *echo.Echo, m *handler.MatchmakingHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
    g := e.Group("/v1/events/:id/queue")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
    if rateLimit != nil {
        g.Use(rateLimit)
    }
    g.POST("/join", m.Join)
    g.POST("/leave", m.Leave)
    g.GET("/status", m.Status)
    g.POST("/next", m.NextMatch)
    g.POST("/room/provision", m.Reprovision)
}

// RegisterAdmin registers the privileged matchmaking endpoints and the
// public queue stats route.  Stats is unauthenticated; it serves the
// event page's "N people waiting" counter and sits behind the response
// cache so bursts of page loads do not hit the database.
func RegisterAdmin(e *echo.Echo, a *handler.AdminMatchHandler, jwtSecret string, cache echo.MiddlewareFunc) {
    if cache != nil {
        e.GET("/v1/events/:id/queue/stats", a.QueueStats, cache)
    } else {
        e.GET("/v1/events/:id/queue/stats", a.QueueStats)
    }

    g := e.Group("/v1/admin/events/:id")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))
    g.POST("/queue/match", a.ForceMatch)
    g.GET("/matches", a.ListMatches)
}
