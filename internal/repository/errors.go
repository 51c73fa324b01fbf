package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// notFound turns pgx.ErrNoRows into ErrNotFound naming the entity.
func notFound(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}

// constraintError maps a foreign key violation to ErrNotFound for the
// referenced entity and a unique violation to ErrConflict.
func constraintError(err error, referenced, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23503":
		return fmt.Errorf("%s %w", referenced, ErrNotFound)
	case "23505":
		return fmt.Errorf("%s %w", entity, ErrConflict)
	}
	return err
}
