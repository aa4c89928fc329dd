// Command consumer appends one line per reservation.created event to
// logs/reservations.log.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/queue"
)

func main() {
	dir := flag.String("dir", "logs", "directory the reservation log is written to")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(cfg.AMQPURL, *dir)
	slog.Info("reservation-consumer: starting", "queue", c.Queue, "dir", c.Dir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("reservation-consumer: stopped", "error", err)
	}
	slog.Info("reservation-consumer: stopped")
}
