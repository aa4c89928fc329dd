package model

import "time"

// Performance is a single scheduled showing of a play in a hall.  Listings
// are ordered by ShowTime descending.
//
// Fields:
//  ID            – primary key identifier.
//  ShowTime      – when the performance starts (UTC).
//  PlayID        – play being performed.
//  TheatreHallID – hall hosting the performance.
type Performance struct {
	ID            uint64    // performances.id
	ShowTime      time.Time // performances.show_time
	PlayID        uint64    // performances.play_id
	TheatreHallID uint64    // performances.theatre_hall_id
}

// PerformanceInput carries the writable fields of a performance.
type PerformanceInput struct {
	ShowTime      time.Time
	PlayID        uint64
	TheatreHallID uint64
}

// Seat identifies one place in a hall.
type Seat struct {
	Row  int
	Seat int
}

// PerformanceView is a performance joined with its play and hall.
// TicketsAvailable is derived at read time from the current ticket count
// and is never stored.  TakenSeats is only populated for detail reads.
type PerformanceView struct {
	Performance
	Play             Play
	Hall             TheatreHall
	TicketsAvailable int
	TakenSeats       []Seat
}
