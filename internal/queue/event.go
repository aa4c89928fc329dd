// Package queue carries reservation events over RabbitMQ: the payload
// type, the publisher used by the API and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ReservationCreatedQueue is the durable queue reservation events go to.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published once a reservation has committed.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64        `json:"reservation_id"`
	UserID        uint64        `json:"user_id"`
	CreatedAt     string        `json:"created_at"`
	Tickets       []EventTicket `json:"tickets"`
}

// EventTicket is one booked seat inside a ReservationCreatedEvent.
type EventTicket struct {
	TicketID      uint64 `json:"ticket_id"`
	PerformanceID uint64 `json:"performance_id"`
	PlayTitle     string `json:"play_title,omitempty"`
	HallName      string `json:"hall_name,omitempty"`
	ShowTime      string `json:"show_time,omitempty"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
}

// NewReservationCreated builds the event for a committed reservation.
// Performance details are included for tickets that carry them.
func NewReservationCreated(r model.Reservation) ReservationCreatedEvent {
	ev := ReservationCreatedEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339Nano),
		Tickets:       make([]EventTicket, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		et := EventTicket{TicketID: t.ID, PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat}
		if p := t.Performance; p != nil {
			et.PlayTitle = p.Play.Title
			et.HallName = p.Hall.Name
			et.ShowTime = p.ShowTime.UTC().Format(time.RFC3339)
		}
		ev.Tickets = append(ev.Tickets, et)
	}
	return ev
}
