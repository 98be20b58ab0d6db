package datastore

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

const pgUniqueViolation = "23505"

func mapInsertError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}
