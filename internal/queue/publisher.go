package queue

import (
	"context"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// Publisher sends reservation events to RabbitMQ.  Each publish dials its
// own connection, so a broker outage only affects the events sent while
// it lasts.
type Publisher struct {
	URL   string
	Queue string
}

// NewPublisher returns a Publisher for the reservation.created queue.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Queue: ReservationCreatedQueue}
}

// PublishReservationCreated publishes the event for r.  Any error is
// logged and returned so the caller can choose to ignore it.  Messages are
// marked as persistent.
func (p *Publisher) PublishReservationCreated(ctx context.Context, r model.Reservation) error {
	body, err := jsoniter.ConfigFastest.Marshal(NewReservationCreated(r))
	if err != nil {
		slog.Error("rabbitmq: marshal event failed", "error", err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		slog.Warn("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Warn("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		slog.Warn("rabbitmq: queue declare failed", "queue", p.Queue, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// Default exchange; routing key = queue name.
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		slog.Warn("rabbitmq: publish failed", "queue", p.Queue, "error", err)
		return err
	}
	return nil
}
