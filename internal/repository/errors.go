package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when the accounts_email_key constraint rejects an insert.
var ErrDuplicateEmail = errors.New("email already exists")

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation && pqErr.Constraint == constraint
}

// validID reports whether id can be compared against a UUID column. Postgres
// rejects malformed literals with 22P02 instead of matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
