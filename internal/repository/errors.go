// Package repository defines the store interfaces used by the service
// layer, their MySQL implementations and the sentinel errors they share.
// Sentinels allow higher layers to distinguish failure scenarios without
// depending on driver specific error types.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id matches no row.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrSeatTaken is returned when inserting a ticket violates the unique
// (performance_id, seat_row, seat_number) key.  The storage engine is the
// source of truth for this check so that concurrent bookings of the same
// seat resolve to exactly one winner.
var ErrSeatTaken = errors.New("seat already taken")

// ErrEmailExists is returned when registering an email that is already in
// use.
var ErrEmailExists = errors.New("email already exists")

// MySQL server error numbers the stores translate.
const (
	mysqlDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlLockDeadlock   = 1213 // ER_LOCK_DEADLOCK
	mysqlNoReferenced   = 1452 // ER_NO_REFERENCED_ROW_2
)

func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicateKey reports whether err is a MySQL unique key violation.
func isDuplicateKey(err error) bool {
	return mysqlErrno(err) == mysqlDuplicateEntry
}

// isSeatConflict reports whether a ticket insert lost a race for a seat.
// Two bookings waiting on each other's unique-index locks end in a
// deadlock; InnoDB aborts one of them and that one lost the seat.
func isSeatConflict(err error) bool {
	switch mysqlErrno(err) {
	case mysqlDuplicateEntry, mysqlLockDeadlock:
		return true
	}
	return false
}

// isMissingReference reports whether a foreign key points at no row.
func isMissingReference(err error) bool {
	return mysqlErrno(err) == mysqlNoReferenced
}
