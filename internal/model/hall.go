package model

// TheatreHall is a room where performances take place.  Seats are laid out
// as Rows rows of SeatsInRow seats, both numbered from 1.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name.
//  Rows       – number of seat rows (> 0).
//  SeatsInRow – number of seats in each row (> 0).
type TheatreHall struct {
	ID         uint64 // theatre_halls.id
	Name       string // theatre_halls.name
	Rows       int    // theatre_halls.num_rows
	SeatsInRow int    // theatre_halls.seats_in_row
}

// Capacity is the total number of seats in the hall.
func (h TheatreHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// TicketsAvailable returns the number of seats still free in the hall when
// taken tickets have already been issued for a performance.
func (h TheatreHall) TicketsAvailable(taken int) int {
	return h.Capacity() - taken
}
