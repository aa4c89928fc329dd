// Package filter turns list query parameters into typed filters and
// evaluates them against in-memory entities.  The MySQL repositories build
// the equivalent SQL predicates from the same structs.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

// DateLayout is the accepted format of the performance "date" parameter.
const DateLayout = "2006-01-02"

// PlayFilter selects plays.  Filters combine with AND; id lists match
// when the play is linked to ANY of the ids.
type PlayFilter struct {
	Title    string
	GenreIDs []uint64
	ActorIDs []uint64
}

// PerformanceFilter selects performances.  Both fields are optional and
// combine with AND.
type PerformanceFilter struct {
	Date   *time.Time // calendar date in UTC
	PlayID *uint64
}

// ParsePlayFilter reads title, genres and actors from q.  The title is
// kept verbatim, so a title of " " matches titles containing a space.
func ParsePlayFilter(q url.Values) (PlayFilter, error) {
	var f PlayFilter
	verr := &apperr.ValidationError{}
	f.Title = q.Get("title")
	if raw := q.Get("genres"); raw != "" {
		ids, err := ParseIDList(raw)
		if err != nil {
			verr.Add(apperr.ErrInvalidFilterValue, "genres", err.Error())
		}
		f.GenreIDs = ids
	}
	if raw := q.Get("actors"); raw != "" {
		ids, err := ParseIDList(raw)
		if err != nil {
			verr.Add(apperr.ErrInvalidFilterValue, "actors", err.Error())
		}
		f.ActorIDs = ids
	}
	return f, verr.Err()
}

// ParsePerformanceFilter reads date (YYYY-MM-DD) and play from q.
func ParsePerformanceFilter(q url.Values) (PerformanceFilter, error) {
	var f PerformanceFilter
	verr := &apperr.ValidationError{}
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			verr.Add(apperr.ErrInvalidFilterValue, "date", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
		} else {
			f.Date = &d
		}
	}
	if raw := strings.TrimSpace(q.Get("play")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Add(apperr.ErrInvalidFilterValue, "play", fmt.Sprintf("invalid id %q", raw))
		} else {
			f.PlayID = &id
		}
	}
	return f, verr.Err()
}

// ParseIDList parses a comma separated list of numeric ids.  Blank
// segments are rejected along with anything non-numeric.
func ParseIDList(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in list %q", p, raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Match reports whether p passes the filter.  p.Genres and p.Actors must
// be populated.
func (f PlayFilter) Match(p model.Play) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Title)) {
		return false
	}
	if len(f.GenreIDs) > 0 && !anyIn(p.GenreIDs(), f.GenreIDs) {
		return false
	}
	if len(f.ActorIDs) > 0 && !anyIn(p.ActorIDs(), f.ActorIDs) {
		return false
	}
	return true
}

// Match reports whether p passes the filter.
func (f PerformanceFilter) Match(p model.Performance) bool {
	if f.Date != nil {
		y, m, d := p.ShowTime.UTC().Date()
		fy, fm, fd := f.Date.Date()
		if y != fy || m != fm || d != fd {
			return false
		}
	}
	if f.PlayID != nil && p.PlayID != *f.PlayID {
		return false
	}
	return true
}

func anyIn(have, want []uint64) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
