package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

// LogFileName is the file, inside Consumer.Dir, that events are appended to.
const LogFileName = "reservations.log"

// Consumer reads reservation.created events and appends one line per
// reservation to Dir/reservations.log.
type Consumer struct {
	URL   string
	Queue string
	Dir   string
}

// NewConsumer returns a Consumer writing into dir.
func NewConsumer(url, dir string) *Consumer {
	return &Consumer{URL: url, Queue: ReservationCreatedQueue, Dir: dir}
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled.  Lost connections are redialed with exponential backoff.
// Messages that cannot be processed are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			slog.Warn("reservation-consumer: failed to dial broker", "error", err, "retry_in", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("reservation-consumer: consume loop ended; reconnecting", "error", err)
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("reservation-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	slog.Info("reservation-consumer: consuming", "queue", c.Queue)
	for d := range msgs {
		if err := c.HandleMessage(d.Body); err != nil {
			slog.Error("reservation-consumer: handle message failed", "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends its line to the log file.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev ReservationCreatedEvent
	if err := jsoniter.ConfigFastest.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == 0 {
		return errors.New("event without reservation_id")
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev ReservationCreatedEvent) string {
	seats := make([]string, 0, len(ev.Tickets))
	for _, t := range ev.Tickets {
		seats = append(seats, fmt.Sprintf("p%d:r%d:s%d", t.PerformanceID, t.Row, t.Seat))
	}
	play := ""
	if len(ev.Tickets) > 0 {
		play = ev.Tickets[0].PlayTitle
	}
	return fmt.Sprintf("[%s] Reservation created | reservation_id=%d | user_id=%d | play=%q | tickets=%d | seats=[%s]\n",
		ev.CreatedAt, ev.ReservationID, ev.UserID, play, len(ev.Tickets), strings.Join(seats, ","))
}
