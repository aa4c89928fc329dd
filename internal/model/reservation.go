package model

import "time"

// Reservation groups the tickets a user booked in one request.  It is
// created together with all of its tickets or not at all.  Listings are
// ordered by CreatedAt descending.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CreatedAt – commit timestamp, stamped by the server.
//  Tickets   – seats claimed by this reservation.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
	Tickets   []Ticket
}

// Ticket is a claim on one seat for one performance.  The triple
// (PerformanceID, Row, Seat) is unique across all tickets.
//
// Performance is only filled in by listing queries that join the
// performance, play and hall.
type Ticket struct {
	ID            uint64 // tickets.id
	PerformanceID uint64 // tickets.performance_id
	ReservationID uint64 // tickets.reservation_id
	Row           int    // tickets.seat_row
	Seat          int    // tickets.seat_number
	Performance   *PerformanceView
}

// TicketRequest is one requested seat in a booking.
type TicketRequest struct {
	PerformanceID uint64
	Row           int
	Seat          int
}

// Page describes a 1-based page of results.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}
