package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/database"
	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/metrics"
	"github.com/iliyamo/theatre-reservation/internal/queue"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/repository/memory"
	"github.com/iliyamo/theatre-reservation/internal/router"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// stores groups the repositories of one storage backend.
type stores struct {
	genres       repository.GenreStore
	actors       repository.ActorStore
	halls        repository.HallStore
	plays        repository.PlayStore
	performances repository.PerformanceStore
	reservations repository.ReservationStore
	users        repository.UserStore
	tokens       repository.TokenStore
}

func mysqlStores(db *sqlx.DB) stores {
	return stores{
		genres:       repository.NewGenreRepo(db),
		actors:       repository.NewActorRepo(db),
		halls:        repository.NewHallRepo(db),
		plays:        repository.NewPlayRepo(db),
		performances: repository.NewPerformanceRepo(db),
		reservations: repository.NewReservationRepo(db),
		users:        repository.NewUserRepo(db),
		tokens:       repository.NewTokenRepo(db),
	}
}

func memoryStores(db *memory.DB) stores {
	return stores{
		genres:       db.Genres(),
		actors:       db.Actors(),
		halls:        db.Halls(),
		plays:        db.Plays(),
		performances: db.Performances(),
		reservations: db.Reservations(),
		users:        db.Users(),
		tokens:       db.Tokens(),
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		st    stores
		ready handler.Pinger
	)
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		st = memoryStores(memory.New())
	default:
		db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		if err != nil {
			logger.Fatal("failed to connect to database", "error", err)
		}
		defer db.Close()
		if cfg.DB.Migrate {
			if err := database.Migrate(ctx, db); err != nil {
				logger.Fatal("failed to migrate database", "error", err)
			}
			slog.Info("database schema is up to date")
		}
		st = mysqlStores(db)
		ready = db
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil && (cfg.Cache.Enabled || cfg.RateLimit.Enabled) {
		slog.Warn("redis unavailable; response cache and rate limiting are disabled", "addr", cfg.Redis.Addr)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	opts := []service.BookingOption{service.WithObserver(m)}
	if cfg.EventsEnabled {
		opts = append(opts, service.WithEvents(queue.NewPublisher(cfg.AMQPURL)))
	}

	e := router.New(router.Deps{
		Cfg:      cfg,
		Catalog:  service.NewCatalogService(st.genres, st.actors, st.halls, st.plays),
		Schedule: service.NewScheduleService(st.performances, st.plays, st.halls),
		Booking:  service.NewBookingService(st.reservations, opts...),
		Users:    st.users,
		Tokens:   st.tokens,
		Redis:    rdb,
		Metrics:  m,
		DB:       ready,
	})

	addr := ":" + cfg.Port
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.Storage)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
