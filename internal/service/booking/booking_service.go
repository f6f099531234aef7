package booking

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, principal auth.Principal, input CreateBookingInput) (*domain.BookingDetails, error)
	MyBookings(ctx context.Context, principal auth.Principal) ([]domain.BookingDetails, error)
	AllBookings(ctx context.Context, principal auth.Principal) ([]domain.BookingDetails, error)
	CancelBooking(ctx context.Context, principal auth.Principal, bookingID int64) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, principal auth.Principal, bookingID int64) (*domain.Booking, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, flightID, userID int64, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, flightID, userID int64) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// publishRetries bounds event delivery attempts before a state change is
// logged as undelivered.
const publishRetries = 3

type PassengerInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type CreateBookingInput struct {
	FlightID         int64                `json:"flight_id"`
	Passengers       []PassengerInput     `json:"passengers"`
	BookingType      domain.BookingType   `json:"booking_type"`
	TotalAmountCents int64                `json:"total_amount_cents"`
	PaymentMethod    domain.PaymentMethod `json:"payment_method"`
	FlightNumber     string               `json:"flight_number"`
	DepartureDate    time.Time            `json:"departure_date"`
	ReturnDate       *time.Time           `json:"return_date,omitempty"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates in a fixed order (first failure wins), then
// persists the booking, its passengers and the seat reservation as one
// transaction in the repository.
func (s *BookingService) CreateBooking(ctx context.Context, principal auth.Principal, input CreateBookingInput) (*domain.BookingDetails, error) {
	if input.FlightID == 0 || input.Passengers == nil || input.BookingType == "" ||
		input.TotalAmountCents == 0 || input.PaymentMethod == "" || input.FlightNumber == "" || input.DepartureDate.IsZero() {
		return nil, domain.Validationf("all booking fields are required")
	}
	if input.BookingType == domain.BookingTypeRoundTrip && input.ReturnDate == nil {
		return nil, domain.Validationf("return date is required for round trip bookings")
	}
	if len(input.Passengers) == 0 {
		return nil, domain.Validationf("passengers must be a non-empty array")
	}
	if len(input.Passengers) > domain.MaxPassengers {
		return nil, domain.Validationf("maximum %d passengers allowed per booking", domain.MaxPassengers)
	}
	if !domain.ValidBookingType(input.BookingType) {
		return nil, domain.Validationf("booking type must be either one-way or round trip")
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return nil, domain.Validationf("invalid payment method")
	}
	if input.TotalAmountCents < 0 {
		return nil, domain.Validationf("total amount must be non-negative")
	}
	for _, p := range input.Passengers {
		if p.FirstName == "" || p.LastName == "" || p.Email == "" || p.PhoneNumber == "" {
			return nil, domain.Validationf("every passenger needs first name, last name, email and phone number")
		}
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if !flight.IsActive {
		return nil, domain.Conflictf("flight is no longer active")
	}
	if flight.FlightNumber != input.FlightNumber {
		return nil, domain.Validationf("flight number does not match the selected flight")
	}
	if !sameDay(flight.DepartureDate, input.DepartureDate) {
		return nil, domain.Validationf("departure date does not match the flight schedule")
	}

	// Advisory lock against duplicate submits; the conditional seat
	// decrement inside the repository transaction is authoritative.
	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, input.FlightID, principal.UserID, s.holdTTL)
		if err != nil {
			return nil, domain.StorageError("failed to acquire booking lock", err)
		}
		if !ok {
			return nil, domain.Conflictf("a booking for this flight is already in progress")
		}
		locked = true
	}

	booking := &domain.Booking{
		Reference:        uuid.NewString(),
		UserID:           principal.UserID,
		FlightID:         flight.ID,
		FlightNumber:     flight.FlightNumber,
		BookingType:      input.BookingType,
		TotalAmountCents: input.TotalAmountCents,
		PaymentMethod:    input.PaymentMethod,
		DepartureDate:    flight.DepartureDate,
		ReturnDate:       input.ReturnDate,
		Seats:            len(input.Passengers),
	}
	passengers := make([]domain.Passenger, len(input.Passengers))
	for i, p := range input.Passengers {
		passengers[i] = domain.Passenger{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Email:       p.Email,
			PhoneNumber: p.PhoneNumber,
		}
	}

	// The lock only narrows in-flight duplicate submits; once the
	// transaction settles either way the seat decrement has decided, so
	// the lock is dropped immediately.
	err = s.bookings.Create(ctx, booking, passengers)
	if locked {
		_ = s.cache.ReleaseBookingLock(ctx, input.FlightID, principal.UserID)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, passengers[0].Email)
	return &domain.BookingDetails{Booking: *booking, Flight: flight, Passengers: passengers}, nil
}

func (s *BookingService) MyBookings(ctx context.Context, principal auth.Principal) ([]domain.BookingDetails, error) {
	return s.bookings.ListByUser(ctx, principal.UserID)
}

func (s *BookingService) AllBookings(ctx context.Context, principal auth.Principal) ([]domain.BookingDetails, error) {
	if !principal.IsAdmin {
		return nil, domain.Forbiddenf("admin privileges required")
	}
	return s.bookings.ListAll(ctx)
}

// CancelBooking is allowed for the owner or an admin. Cancelling an
// already-cancelled booking is an idempotent no-op. Confirmed bookings may
// be cancelled; leaving pending or confirmed releases the reserved seats.
// The status pre-check here is advisory: the repository's conditional
// transition decides, and losing it to a concurrent cancel collapses into
// the idempotent case.
func (s *BookingService) CancelBooking(ctx context.Context, principal auth.Principal, bookingID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != principal.UserID && !principal.IsAdmin {
		return nil, domain.Forbiddenf("only the booking owner or an admin may cancel")
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	updated, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			if again, readErr := s.bookings.GetByID(ctx, bookingID); readErr == nil && again.Status == domain.BookingStatusCancelled {
				return again, nil
			}
		}
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseBookingLock(ctx, updated.FlightID, updated.UserID)
	}
	s.publish(ctx, "booking_cancelled", updated, "")
	return updated, nil
}

// ConfirmBooking is the entry point for the external confirmation trigger
// and is admin-gated. Only pending bookings can be confirmed; the
// repository's conditional transition keeps a booking cancelled underneath
// us from coming back as confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, principal auth.Principal, bookingID int64) (*domain.Booking, error) {
	if !principal.IsAdmin {
		return nil, domain.Forbiddenf("admin privileges required")
	}
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.Conflictf("booking is not pending")
	}

	updated, err := s.bookings.Confirm(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_confirmed", updated, "")
	return updated, nil
}

// publish is best effort: event delivery failures are logged, never
// surfaced to the caller.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, email string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		Reference:     booking.Reference,
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		FlightID:      booking.FlightID,
		FlightNumber:  booking.FlightNumber,
		Seats:         booking.Seats,
		Status:        string(booking.Status),
		DepartureDate: booking.DepartureDate,
		ReturnDate:    booking.ReturnDate,
		Email:         email,
	}
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.Reference, event, publishRetries); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.Reference, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.Reference, event, publishRetries); err != nil {
			log.Printf("WARNING: failed to publish notification for booking %s: %v", booking.Reference, err)
		}
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

var _ BookingUseCase = (*BookingService)(nil)
