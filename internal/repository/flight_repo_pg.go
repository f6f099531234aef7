package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SearchActive(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) (*domain.Flight, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Flight, error)
	ScheduleConflicts(ctx context.Context, excludeID int64, date time.Time, departureTime string) (bool, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, origin, destination, departure_date, departure_time, arrival_date, arrival_time, price_cents, total_seats, available_seats, is_active, created_at, updated_at`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_date, departure_time`)
	if err != nil {
		return nil, domain.StorageError("failed to list flights", err)
	}
	defer rows.Close()
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		return nil, mapReadError(err, "flight not found", "failed to load flight")
	}
	return &f, nil
}

// SearchActive matches on route and the actual scheduled departure date.
// Archived flights never match.
func (r *PGFlightRepository) SearchActive(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_date=$3 AND is_active
		ORDER BY departure_time`, origin, destination, date)
	if err != nil {
		return nil, domain.StorageError("failed to search flights", err)
	}
	defer rows.Close()
	return collectFlights(rows)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, origin, destination, departure_date, departure_time, arrival_date, arrival_time, price_cents, total_seats, available_seats, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		RETURNING id, is_active, created_at, updated_at`,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureDate, flight.DepartureTime,
		flight.ArrivalDate, flight.ArrivalTime, flight.PriceCents, flight.TotalSeats, flight.AvailableSeats).
		Scan(&flight.ID, &flight.IsActive, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "failed to create flight")
	}
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `UPDATE flights
		SET flight_number=$1, origin=$2, destination=$3, departure_date=$4, departure_time=$5, arrival_date=$6, arrival_time=$7, price_cents=$8, updated_at=now()
		WHERE id=$9
		RETURNING `+flightColumns,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureDate, flight.DepartureTime,
		flight.ArrivalDate, flight.ArrivalTime, flight.PriceCents, flight.ID)

	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("flight not found")
		}
		return nil, mapWriteError(err, "failed to update flight")
	}
	return &f, nil
}

func (r *PGFlightRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `UPDATE flights SET is_active=$1, updated_at=now() WHERE id=$2 RETURNING `+flightColumns, active, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("flight not found")
		}
		return nil, mapWriteError(err, "failed to update flight")
	}
	return &f, nil
}

// ScheduleConflicts is the advisory pre-check; the partial unique index on
// (departure_date, departure_time) is what actually closes the race.
func (r *PGFlightRepository) ScheduleConflicts(ctx context.Context, excludeID int64, date time.Time, departureTime string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM flights WHERE id <> $1 AND departure_date=$2 AND departure_time=$3 AND is_active
	)`, excludeID, date, departureTime).Scan(&exists)
	if err != nil {
		return false, domain.StorageError("failed to check flight schedule", err)
	}
	return exists, nil
}

func scanFlight(row rowScanner, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureDate, &f.DepartureTime,
		&f.ArrivalDate, &f.ArrivalTime, &f.PriceCents, &f.TotalSeats, &f.AvailableSeats, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, domain.StorageError("failed to scan flight", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to read flights", err)
	}
	return flights, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
