package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

func TestAuthorize(t *testing.T) {
	user := &Identity{UserID: 1, Role: model.RoleUser}
	admin := &Identity{UserID: 2, Role: model.RoleAdmin}
	catalog := []Resource{Genres, Actors, Halls, Plays, Performances}

	for _, res := range append(catalog, Reservations) {
		assert.ErrorIs(t, Authorize(nil, res, Read), apperr.ErrUnauthorized, res)
		assert.ErrorIs(t, Authorize(nil, res, Write), apperr.ErrUnauthorized, res)
		assert.ErrorIs(t, Authorize(&Identity{}, res, Read), apperr.ErrUnauthorized, res)
	}
	for _, res := range catalog {
		assert.NoError(t, Authorize(user, res, Read), res)
		assert.ErrorIs(t, Authorize(user, res, Write), apperr.ErrForbidden, res)
		assert.NoError(t, Authorize(admin, res, Read), res)
		assert.NoError(t, Authorize(admin, res, Write), res)
	}
	assert.NoError(t, Authorize(user, Reservations, Read))
	assert.NoError(t, Authorize(user, Reservations, Write))
	assert.NoError(t, Authorize(admin, Reservations, Write))
	assert.ErrorIs(t, Authorize(admin, Resource("unknown"), Read), apperr.ErrForbidden)
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, Read, ActionFor(http.MethodGet))
	assert.Equal(t, Read, ActionFor(http.MethodHead))
	assert.Equal(t, Write, ActionFor(http.MethodPost))
	assert.Equal(t, Write, ActionFor(http.MethodPut))
	assert.Equal(t, Write, ActionFor(http.MethodDelete))
}
