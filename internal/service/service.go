// Package service implements the catalog, scheduling and booking rules on
// top of the repository stores.  Services return apperr values; callers
// never see repository sentinels.
package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// maxNameLen matches the VARCHAR(255) name and title columns.
const maxNameLen = 255

// Field messages shared by the validators.
const (
	msgBlank    = "This field may not be blank."
	msgRequired = "This field is required."
	msgTooLong  = "Ensure this field has no more than 255 characters."
	msgMinOne   = "Ensure this value is greater than or equal to 1."
	msgNotEmpty = "This list may not be empty."
	msgUnique   = "The fields performance, row, seat must make a unique set."
)

func msgInvalidPK(id uint64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// translate maps repository sentinels onto the apperr taxonomy.
func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

// checkName trims s and records a blank or overlong value under field.
func checkName(v *apperr.ValidationError, field, s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		v.Add(apperr.ErrInvalidField, field, msgBlank)
	case utf8.RuneCountInString(s) > maxNameLen:
		v.Add(apperr.ErrInvalidField, field, msgTooLong)
	}
	return s
}
