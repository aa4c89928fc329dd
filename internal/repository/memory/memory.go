// Package memory is a process-local implementation of the repository
// stores.  It mirrors the MySQL schema's behavior: cascading deletes,
// the unique (performance, row, seat) ticket key and the same listing
// orders.  Booking transactions are serialized behind a single lock.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

type playRecord struct {
	ID          uint64
	Title       string
	Description string
	GenreIDs    []uint64
	ActorIDs    []uint64
}

type tokenRecord struct {
	UserID    uint64
	ExpiresAt time.Time
	Revoked   bool
}

type seatKey struct {
	PerformanceID uint64
	Row, Seat     int
}

// DB holds every table.  The zero value is not usable; call New.
type DB struct {
	mu sync.Mutex

	nextID map[string]uint64

	genres       map[uint64]model.Genre
	actors       map[uint64]model.Actor
	halls        map[uint64]model.TheatreHall
	plays        map[uint64]playRecord
	performances map[uint64]model.Performance
	reservations map[uint64]model.Reservation
	tickets      map[uint64]model.Ticket
	seats        map[seatKey]uint64
	users        map[uint64]model.User
	tokens       map[string]tokenRecord

	now func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{
		nextID:       map[string]uint64{},
		genres:       map[uint64]model.Genre{},
		actors:       map[uint64]model.Actor{},
		halls:        map[uint64]model.TheatreHall{},
		plays:        map[uint64]playRecord{},
		performances: map[uint64]model.Performance{},
		reservations: map[uint64]model.Reservation{},
		tickets:      map[uint64]model.Ticket{},
		seats:        map[seatKey]uint64{},
		users:        map[uint64]model.User{},
		tokens:       map[string]tokenRecord{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Genres returns the genre store.
func (db *DB) Genres() *Genres { return &Genres{db: db} }

// Actors returns the actor store.
func (db *DB) Actors() *Actors { return &Actors{db: db} }

// Halls returns the theatre hall store.
func (db *DB) Halls() *Halls { return &Halls{db: db} }

// Plays returns the play store.
func (db *DB) Plays() *Plays { return &Plays{db: db} }

// Performances returns the performance store.
func (db *DB) Performances() *Performances { return &Performances{db: db} }

// Reservations returns the reservation store.
func (db *DB) Reservations() *Reservations { return &Reservations{db: db} }

// Users returns the user store.
func (db *DB) Users() *Users { return &Users{db: db} }

// Tokens returns the refresh token store.
func (db *DB) Tokens() *Tokens { return &Tokens{db: db} }

// id allocates the next id for table.  Like AUTO_INCREMENT, ids consumed
// by a rolled back transaction are not reused.
func (db *DB) id(table string) uint64 {
	db.nextID[table]++
	return db.nextID[table]
}

// lessFold orders strings the way a case-insensitive collation does.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func sortGenres(gs []model.Genre) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].Name != gs[j].Name {
			return lessFold(gs[i].Name, gs[j].Name)
		}
		return gs[i].ID < gs[j].ID
	})
}

func sortActors(as []model.Actor) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].FirstName != as[j].FirstName {
			return lessFold(as[i].FirstName, as[j].FirstName)
		}
		return as[i].ID < as[j].ID
	})
}

// play assembles a play with its links.  Callers hold mu.
func (db *DB) play(rec playRecord) model.Play {
	p := model.Play{ID: rec.ID, Title: rec.Title, Description: rec.Description}
	for _, id := range rec.GenreIDs {
		if g, ok := db.genres[id]; ok {
			p.Genres = append(p.Genres, g)
		}
	}
	for _, id := range rec.ActorIDs {
		if a, ok := db.actors[id]; ok {
			p.Actors = append(p.Actors, a)
		}
	}
	sortGenres(p.Genres)
	sortActors(p.Actors)
	return p
}

// performanceView joins a performance with its play title, hall and live
// availability.  Callers hold mu.
func (db *DB) performanceView(p model.Performance) model.PerformanceView {
	hall := db.halls[p.TheatreHallID]
	taken := 0
	for k := range db.seats {
		if k.PerformanceID == p.ID {
			taken++
		}
	}
	return model.PerformanceView{
		Performance:      p,
		Play:             model.Play{ID: p.PlayID, Title: db.plays[p.PlayID].Title},
		Hall:             hall,
		TicketsAvailable: hall.TicketsAvailable(taken),
	}
}

// takenSeats lists a performance's seats ordered by row then seat.
// Callers hold mu.
func (db *DB) takenSeats(performanceID uint64) []model.Seat {
	out := []model.Seat{}
	for k := range db.seats {
		if k.PerformanceID == performanceID {
			out = append(out, model.Seat{Row: k.Row, Seat: k.Seat})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Seat < out[j].Seat
	})
	return out
}

// deletePerformance removes a performance and its tickets.  Callers hold mu.
func (db *DB) deletePerformance(id uint64) {
	delete(db.performances, id)
	for tid, t := range db.tickets {
		if t.PerformanceID == id {
			delete(db.tickets, tid)
			delete(db.seats, seatKey{t.PerformanceID, t.Row, t.Seat})
		}
	}
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
