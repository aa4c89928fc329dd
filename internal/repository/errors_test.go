package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestMySQLErrorClassification(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2-2' for key 'uq_ticket_seat'"}
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}

	tests := []struct {
		name     string
		err      error
		dup      bool
		conflict bool
		missing  bool
	}{
		{"duplicate entry", dup, true, true, false},
		{"wrapped duplicate entry", fmt.Errorf("insert ticket: %w", dup), true, true, false},
		{"deadlock", deadlock, false, true, false},
		{"foreign key", fk, false, false, true},
		{"other", errors.New("connection reset"), false, false, false},
		{"nil", nil, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dup, isDuplicateKey(tt.err))
			assert.Equal(t, tt.conflict, isSeatConflict(tt.err))
			assert.Equal(t, tt.missing, isMissingReference(tt.err))
		})
	}
}
