package repository

import (
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// conflictMessages translates unique-index names into the client-facing
// conflict messages. The indexes are the authoritative uniqueness guard;
// service-level pre-checks are advisory only.
var conflictMessages = map[string]string{
	"users_email_key":        "email is already registered",
	"users_phone_key":        "phone number is already registered",
	"flights_number_key":     "flight number already exists",
	"flights_schedule_key":   "another flight with the same schedule already exists",
	"bookings_reference_key": "booking reference already exists",
}

// mapWriteError turns a driver error from an insert/update into a domain
// error: unique violations become conflicts, everything else is a storage
// failure. Raw driver errors never leave the repository layer.
func mapWriteError(err error, storageMsg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if msg, ok := conflictMessages[pgErr.ConstraintName]; ok {
			return domain.Conflictf("%s", msg)
		}
		return domain.Conflictf("record already exists")
	}
	return domain.StorageError(storageMsg, err)
}

func mapReadError(err error, notFoundMsg, storageMsg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("%s", notFoundMsg)
	}
	return domain.StorageError(storageMsg, err)
}
