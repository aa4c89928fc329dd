package handler

import (
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// Response shapes.  Each action picks its own struct: lists flatten
// related objects to names, details nest them, writes echo ids.

type genreResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type hallResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

type playListResp struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

type playDetailResp struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Genres      []genreResp `json:"genres"`
	Actors      []actorResp `json:"actors"`
}

type playWriteResp struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

type performanceListResp struct {
	ID                  uint64    `json:"id"`
	ShowTime            time.Time `json:"show_time"`
	PlayTitle           string    `json:"play_title"`
	TheatreHallName     string    `json:"theatre_hall_name"`
	TheatreHallCapacity int       `json:"theatre_hall_capacity"`
	TicketsAvailable    int       `json:"tickets_available"`
}

type seatResp struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type performanceDetailResp struct {
	ID               uint64       `json:"id"`
	ShowTime         time.Time    `json:"show_time"`
	Play             playListResp `json:"play"`
	TheatreHall      hallResp     `json:"theatre_hall"`
	TicketsAvailable int          `json:"tickets_available"`
	TakenPlaces      []seatResp   `json:"taken_places"`
}

type performanceWriteResp struct {
	ID          uint64    `json:"id"`
	ShowTime    time.Time `json:"show_time"`
	Play        uint64    `json:"play"`
	TheatreHall uint64    `json:"theatre_hall"`
}

// ticketPerformanceResp summarizes the performance of a listed ticket.
type ticketPerformanceResp struct {
	ID                  uint64    `json:"id"`
	ShowTime            time.Time `json:"show_time"`
	PlayTitle           string    `json:"play_title"`
	TheatreHallName     string    `json:"theatre_hall_name"`
	TheatreHallCapacity int       `json:"theatre_hall_capacity"`
}

type ticketResp struct {
	ID          uint64 `json:"id"`
	Row         int    `json:"row"`
	Seat        int    `json:"seat"`
	Performance uint64 `json:"performance"`
}

type ticketListResp struct {
	ID          uint64                `json:"id"`
	Row         int                   `json:"row"`
	Seat        int                   `json:"seat"`
	Performance ticketPerformanceResp `json:"performance"`
}

type reservationResp struct {
	ID        uint64       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []ticketResp `json:"tickets"`
}

type reservationListResp struct {
	ID        uint64           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []ticketListResp `json:"tickets"`
}

// pageResp is the envelope of paginated lists.  Next and Previous are
// absolute URLs or null.
type pageResp struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func toGenre(g model.Genre) genreResp {
	return genreResp{ID: g.ID, Name: g.Name}
}

func toActor(a model.Actor) actorResp {
	return actorResp{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

func toHall(h model.TheatreHall) hallResp {
	return hallResp{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

func toPlayList(p model.Play) playListResp {
	out := playListResp{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      make([]string, 0, len(p.Genres)),
		Actors:      make([]string, 0, len(p.Actors)),
	}
	for _, g := range p.Genres {
		out.Genres = append(out.Genres, g.Name)
	}
	for _, a := range p.Actors {
		out.Actors = append(out.Actors, a.FullName())
	}
	return out
}

func toPlayDetail(p model.Play) playDetailResp {
	out := playDetailResp{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      make([]genreResp, 0, len(p.Genres)),
		Actors:      make([]actorResp, 0, len(p.Actors)),
	}
	for _, g := range p.Genres {
		out.Genres = append(out.Genres, toGenre(g))
	}
	for _, a := range p.Actors {
		out.Actors = append(out.Actors, toActor(a))
	}
	return out
}

func toPlayWrite(p model.Play) playWriteResp {
	return playWriteResp{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      p.GenreIDs(),
		Actors:      p.ActorIDs(),
	}
}

func toPerformanceList(v model.PerformanceView) performanceListResp {
	return performanceListResp{
		ID:                  v.ID,
		ShowTime:            v.ShowTime.UTC(),
		PlayTitle:           v.Play.Title,
		TheatreHallName:     v.Hall.Name,
		TheatreHallCapacity: v.Hall.Capacity(),
		TicketsAvailable:    v.TicketsAvailable,
	}
}

func toPerformanceDetail(v model.PerformanceView) performanceDetailResp {
	out := performanceDetailResp{
		ID:               v.ID,
		ShowTime:         v.ShowTime.UTC(),
		Play:             toPlayList(v.Play),
		TheatreHall:      toHall(v.Hall),
		TicketsAvailable: v.TicketsAvailable,
		TakenPlaces:      make([]seatResp, 0, len(v.TakenSeats)),
	}
	for _, s := range v.TakenSeats {
		out.TakenPlaces = append(out.TakenPlaces, seatResp{Row: s.Row, Seat: s.Seat})
	}
	return out
}

func toPerformanceWrite(p model.Performance) performanceWriteResp {
	return performanceWriteResp{ID: p.ID, ShowTime: p.ShowTime.UTC(), Play: p.PlayID, TheatreHall: p.TheatreHallID}
}

func toReservation(r model.Reservation) reservationResp {
	out := reservationResp{ID: r.ID, CreatedAt: r.CreatedAt.UTC(), Tickets: make([]ticketResp, 0, len(r.Tickets))}
	for _, t := range r.Tickets {
		out.Tickets = append(out.Tickets, ticketResp{ID: t.ID, Row: t.Row, Seat: t.Seat, Performance: t.PerformanceID})
	}
	return out
}

func toReservationList(r model.Reservation) reservationListResp {
	out := reservationListResp{ID: r.ID, CreatedAt: r.CreatedAt.UTC(), Tickets: make([]ticketListResp, 0, len(r.Tickets))}
	for _, t := range r.Tickets {
		item := ticketListResp{ID: t.ID, Row: t.Row, Seat: t.Seat, Performance: ticketPerformanceResp{ID: t.PerformanceID}}
		if v := t.Performance; v != nil {
			item.Performance = ticketPerformanceResp{
				ID:                  v.ID,
				ShowTime:            v.ShowTime.UTC(),
				PlayTitle:           v.Play.Title,
				TheatreHallName:     v.Hall.Name,
				TheatreHallCapacity: v.Hall.Capacity(),
			}
		}
		out.Tickets = append(out.Tickets, item)
	}
	return out
}
