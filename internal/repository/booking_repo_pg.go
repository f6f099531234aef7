package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Create persists the booking, its passengers and the seat reservation
	// as one transaction. A conflict is returned when the flight has fewer
	// than len(passengers) seats left or has been archived.
	Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetails, error)
	ListAll(ctx context.Context) ([]domain.BookingDetails, error)
	// Cancel transitions the booking to CANCELLED and releases its seats in
	// one transaction. The transition is conditional on the booking not
	// already being cancelled; losing that condition returns a conflict, so
	// concurrent cancels release the seats exactly once.
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	// Confirm transitions PENDING to CONFIRMED conditionally; a booking in
	// any other status returns a conflict.
	Confirm(ctx context.Context, id int64) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, user_id, flight_id, flight_number, booking_type, status, total_amount_cents, payment_method, departure_date, return_date, seats, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StorageError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Conditional decrement: concurrent bookings cannot collectively
	// oversell the flight, and archived flights take no reservations.
	cmd, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND is_active AND available_seats >= $2`, booking.FlightID, booking.Seats)
	if err != nil {
		return domain.StorageError("failed to reserve seats", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflictf("not enough seats available on flight")
	}

	booking.Status = domain.BookingStatusPending
	err = tx.QueryRow(ctx, `INSERT INTO bookings (reference, user_id, flight_id, flight_number, booking_type, status, total_amount_cents, payment_method, departure_date, return_date, seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.UserID, booking.FlightID, booking.FlightNumber, booking.BookingType, booking.Status,
		booking.TotalAmountCents, booking.PaymentMethod, booking.DepartureDate, booking.ReturnDate, booking.Seats).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "failed to create booking")
	}

	for i := range passengers {
		p := &passengers[i]
		p.BookingID = booking.ID
		p.UserID = booking.UserID
		err = tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, user_id, first_name, last_name, email, phone_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			p.BookingID, p.UserID, p.FirstName, p.LastName, p.Email, p.PhoneNumber).
			Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return domain.StorageError("failed to create passenger", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StorageError("failed to commit booking", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, mapReadError(err, "booking not found", "failed to load booking")
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetails, error) {
	return r.list(ctx, `WHERE b.user_id=$1`, userID)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.BookingDetails, error) {
	return r.list(ctx, ``)
}

func (r *PGBookingRepository) list(ctx context.Context, where string, args ...any) ([]domain.BookingDetails, error) {
	query := `SELECT b.id, b.reference, b.user_id, b.flight_id, b.flight_number, b.booking_type, b.status, b.total_amount_cents, b.payment_method, b.departure_date, b.return_date, b.seats, b.created_at, b.updated_at,
		f.id, f.flight_number, f.origin, f.destination, f.departure_date, f.departure_time, f.arrival_date, f.arrival_time, f.price_cents, f.total_seats, f.available_seats, f.is_active, f.created_at, f.updated_at
		FROM bookings b JOIN flights f ON f.id = b.flight_id ` + where + ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("failed to list bookings", err)
	}
	defer rows.Close()

	details := make([]domain.BookingDetails, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var d domain.BookingDetails
		var f domain.Flight
		err := rows.Scan(&d.ID, &d.Reference, &d.UserID, &d.FlightID, &d.FlightNumber, &d.BookingType, &d.Status,
			&d.TotalAmountCents, &d.PaymentMethod, &d.DepartureDate, &d.ReturnDate, &d.Seats, &d.CreatedAt, &d.UpdatedAt,
			&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureDate, &f.DepartureTime,
			&f.ArrivalDate, &f.ArrivalTime, &f.PriceCents, &f.TotalSeats, &f.AvailableSeats, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, domain.StorageError("failed to scan booking", err)
		}
		d.Flight = &f
		details = append(details, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to read bookings", err)
	}
	if len(details) == 0 {
		return details, nil
	}

	if err := r.attachPassengers(ctx, details, ids); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *PGBookingRepository) attachPassengers(ctx context.Context, details []domain.BookingDetails, ids []int64) error {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, user_id, first_name, last_name, email, phone_number, created_at
		FROM passengers WHERE booking_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return domain.StorageError("failed to list passengers", err)
	}
	defer rows.Close()

	byBooking := make(map[int64][]domain.Passenger, len(details))
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.CreatedAt); err != nil {
			return domain.StorageError("failed to scan passenger", err)
		}
		byBooking[p.BookingID] = append(byBooking[p.BookingID], p)
	}
	if err := rows.Err(); err != nil {
		return domain.StorageError("failed to read passengers", err)
	}

	for i := range details {
		details[i].Passengers = byBooking[details[i].ID]
	}
	return nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.StorageError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Conditional transition: only the request that actually flips the
	// status releases the seats. A booking that is already cancelled (or
	// absent) affects zero rows.
	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status <> $1 RETURNING `+bookingColumns, domain.BookingStatusCancelled, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Conflictf("booking is already cancelled")
		}
		return nil, domain.StorageError("failed to cancel booking", err)
	}

	_, err = tx.Exec(ctx, `UPDATE flights SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = now() WHERE id=$1`, b.FlightID, b.Seats)
	if err != nil {
		return nil, domain.StorageError("failed to release seats", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError("failed to commit cancellation", err)
	}
	return &b, nil
}

func (r *PGBookingRepository) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3 RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, id, domain.BookingStatusPending)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Conflictf("booking is not pending")
		}
		return nil, domain.StorageError("failed to confirm booking", err)
	}
	return &b, nil
}

func scanBooking(row rowScanner, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.Reference, &b.UserID, &b.FlightID, &b.FlightNumber, &b.BookingType, &b.Status,
		&b.TotalAmountCents, &b.PaymentMethod, &b.DepartureDate, &b.ReturnDate, &b.Seats, &b.CreatedAt, &b.UpdatedAt)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
