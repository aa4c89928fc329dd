package model

// Genre is shared reference data attached to plays.  Listings are ordered
// by name.
//
// Fields:
//  ID   – primary key identifier.
//  Name – display name (not unique).
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Actor is shared reference data attached to plays.  Listings are ordered
// by first name.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name with a single space.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Play is a stage production.  Genres and Actors are populated by the
// repository from the play_genres and play_actors link tables, ordered by
// genre name and actor first name respectively.
type Play struct {
	ID          uint64  // plays.id
	Title       string  // plays.title
	Description string  // plays.description
	Genres      []Genre // via play_genres
	Actors      []Actor // via play_actors
}

// GenreIDs returns the ids of the attached genres in their current order.
func (p Play) GenreIDs() []uint64 {
	out := make([]uint64, 0, len(p.Genres))
	for _, g := range p.Genres {
		out = append(out, g.ID)
	}
	return out
}

// ActorIDs returns the ids of the attached actors in their current order.
func (p Play) ActorIDs() []uint64 {
	out := make([]uint64, 0, len(p.Actors))
	for _, a := range p.Actors {
		out = append(out, a.ID)
	}
	return out
}

// PlayInput carries the writable fields of a play.  Genre and actor ids
// must reference existing rows.
type PlayInput struct {
	Title       string
	Description string
	GenreIDs    []uint64
	ActorIDs    []uint64
}
