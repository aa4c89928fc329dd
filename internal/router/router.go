// Package router assembles the Echo application: global middleware, the
// JSON codec and every route with its auth, policy, cache and rate-limit
// chain.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/metrics"
	"github.com/iliyamo/theatre-reservation/internal/middleware"
	"github.com/iliyamo/theatre-reservation/internal/policy"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// Deps are the collaborators routes are wired to.  Redis, Metrics and DB
// are optional.
type Deps struct {
	Cfg      config.Config
	Catalog  *service.CatalogService
	Schedule *service.ScheduleService
	Booking  *service.BookingService
	Users    repository.UserStore
	Tokens   repository.TokenStore
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	DB       handler.Pinger
}

// New returns a ready to start Echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(d.Cfg, d.Users, d.Tokens), d.Cfg.JWTSecret)
	RegisterTheatre(e, d)
	return e
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the account endpoints.  Register, login, refresh
// and logout live under /v1/auth without a session; /v1/me needs one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterTheatre registers the catalog, schedule and booking API under
// /v1/theatre.  Every route needs a valid token; each resource group then
// applies its access policy.  Catalog reads are cached and catalog writes
// purge the cached pages of the resource they touch.
func RegisterTheatre(e *echo.Echo, d Deps) {
	cache := middleware.NewResponseCache(d.Cfg.Cache, d.Redis)
	catalog := handler.NewCatalogHandler(d.Catalog)
	performances := handler.NewPerformanceHandler(d.Schedule)
	reservations := handler.NewReservationHandler(d.Booking)

	theatre := e.Group("/v1/theatre", middleware.JWTAuth(d.Cfg.JWTSecret))

	// ---- Genres ----
	genres := theatre.Group("/genres", middleware.Authorize(policy.Genres))
	genres.GET("", catalog.ListGenres, cache.Read(string(policy.Genres)))
	// Play payloads embed genre names, so play pages go stale too.
	genres.POST("", catalog.CreateGenre, cache.Invalidate(string(policy.Genres), string(policy.Plays)))

	// ---- Actors ----
	actors := theatre.Group("/actors", middleware.Authorize(policy.Actors))
	actors.GET("", catalog.ListActors, cache.Read(string(policy.Actors)))
	actors.POST("", catalog.CreateActor, cache.Invalidate(string(policy.Actors), string(policy.Plays)))

	// ---- Theatre halls ----
	halls := theatre.Group("/theatre_hall", middleware.Authorize(policy.Halls))
	halls.GET("", catalog.ListHalls, cache.Read(string(policy.Halls)))
	halls.POST("", catalog.CreateHall, cache.Invalidate(string(policy.Halls)))

	// ---- Plays ----
	plays := theatre.Group("/plays", middleware.Authorize(policy.Plays))
	plays.GET("", catalog.ListPlays, cache.Read(string(policy.Plays)))
	plays.GET("/:id", catalog.GetPlay, cache.Read(string(policy.Plays)))
	plays.POST("", catalog.CreatePlay, cache.Invalidate(string(policy.Plays)))
	plays.PUT("/:id", catalog.UpdatePlay, cache.Invalidate(string(policy.Plays)))
	plays.DELETE("/:id", catalog.DeletePlay, cache.Invalidate(string(policy.Plays)))

	// ---- Performances ----
	// Never cached: tickets_available must reflect the latest bookings.
	perf := theatre.Group("/performance", middleware.Authorize(policy.Performances))
	perf.GET("", performances.List)
	perf.GET("/:id", performances.Get)
	perf.POST("", performances.Create)
	perf.PUT("/:id", performances.Update)
	perf.DELETE("/:id", performances.Delete)

	// ---- Reservations ----
	res := theatre.Group("/reservations", middleware.Authorize(policy.Reservations))
	res.GET("", reservations.List)
	res.POST("", reservations.Create, middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis))
}
