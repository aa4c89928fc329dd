// Package policy decides which caller may perform which action on which
// resource.  It knows nothing about HTTP; the middleware package maps
// requests onto (Identity, Resource, Action).
package policy

import (
	"net/http"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

// Resource names a guarded collection.
type Resource string

const (
	Genres       Resource = "genres"
	Actors       Resource = "actors"
	Halls        Resource = "theatre_halls"
	Plays        Resource = "plays"
	Performances Resource = "performances"
	Reservations Resource = "reservations"
)

// Action is either a read (list/retrieve) or a write (create/update/delete).
type Action int

const (
	Read Action = iota
	Write
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the caller is privileged.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// ActionFor classifies an HTTP method.  Safe methods are reads.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	}
	return Write
}

// Authorize returns nil when id may perform act on res, apperr.ErrUnauthorized
// when there is no identity and apperr.ErrForbidden otherwise.
//
// Reservations are open to every authenticated caller because each
// operation is scoped to the caller's own reservations further down.
func Authorize(id *Identity, res Resource, act Action) error {
	if id == nil || id.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	switch res {
	case Reservations:
		return nil
	case Genres, Actors, Halls, Plays, Performances:
		if act == Read || id.IsAdmin() {
			return nil
		}
		return apperr.ErrForbidden
	}
	return apperr.ErrForbidden
}
