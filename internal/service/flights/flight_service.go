package flights

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error)
	Archive(ctx context.Context, id int64) (*domain.Flight, error)
	Activate(ctx context.Context, id int64) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	DepartureTime string
	ArrivalDate   time.Time
	ArrivalTime   string
	PriceCents    int64
	TotalSeats    int
}

type UpdateFlightInput struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	DepartureTime string
	ArrivalDate   time.Time
	ArrivalTime   string
	PriceCents    int64
}

type SearchInput struct {
	Origin      string
	Destination string
	Date        time.Time
	ReturnDate  *time.Time
}

type SearchResult struct {
	DepartureFlights []domain.Flight
	ReturnFlights    []domain.Flight
}

// synthAttempts bounds the retry loop when a synthesized flight number
// collides with an existing one.
const synthAttempts = 3

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.Origin == "" || input.Destination == "" || input.DepartureTime == "" || input.ArrivalTime == "" {
		return nil, domain.Validationf("origin, destination, departure/arrival time, and price are required")
	}
	if input.PriceCents < 0 {
		return nil, domain.Validationf("price must be a positive number")
	}
	if input.Origin == input.Destination {
		return nil, domain.Validationf("origin and destination cannot be the same")
	}
	if input.TotalSeats <= 0 {
		return nil, domain.Validationf("total seats must be positive")
	}
	if err := validateTimeOfDay(input.DepartureTime, input.ArrivalTime); err != nil {
		return nil, err
	}

	today := truncateToDay(time.Now())
	depDate := input.DepartureDate
	if depDate.IsZero() {
		depDate = today
	}
	arrDate := input.ArrivalDate
	if arrDate.IsZero() {
		arrDate = today
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureDate:  truncateToDay(depDate),
		DepartureTime:  input.DepartureTime,
		ArrivalDate:    truncateToDay(arrDate),
		ArrivalTime:    input.ArrivalTime,
		PriceCents:     input.PriceCents,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
	}

	// A caller-supplied number that collides is a hard conflict. A
	// synthesized one is regenerated and retried a few times before
	// giving up; the unique index stays authoritative either way.
	synthesized := flight.FlightNumber == ""
	attempts := 1
	if synthesized {
		attempts = synthAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if synthesized {
			flight.FlightNumber = synthFlightNumber()
		}
		err = s.repo.Create(ctx, flight)
		if err == nil {
			s.invalidate(ctx)
			return flight, nil
		}
		if domain.KindOf(err) != domain.KindConflict {
			return nil, err
		}
	}
	return nil, err
}

// Search matches active flights on the route whose stored departure date
// equals the requested date; archived flights and other dates never match.
// When a return date is supplied the reverse route is searched on it.
func (s *FlightService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if input.Origin == "" || input.Destination == "" || input.Date.IsZero() {
		return nil, domain.Validationf("please provide origin, destination, and date for search")
	}

	departure, err := s.repo.SearchActive(ctx, input.Origin, input.Destination, truncateToDay(input.Date))
	if err != nil {
		return nil, err
	}

	result := &SearchResult{DepartureFlights: departure, ReturnFlights: []domain.Flight{}}
	if input.ReturnDate != nil {
		back, err := s.repo.SearchActive(ctx, input.Destination, input.Origin, truncateToDay(*input.ReturnDate))
		if err != nil {
			return nil, err
		}
		result.ReturnFlights = back
	}
	return result, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.Origin == "" || input.Destination == "" ||
		input.DepartureDate.IsZero() || input.DepartureTime == "" ||
		input.ArrivalDate.IsZero() || input.ArrivalTime == "" {
		return nil, domain.Validationf("all fields are required")
	}
	if input.PriceCents < 0 {
		return nil, domain.Validationf("price must be a positive number")
	}
	if input.Origin == input.Destination {
		return nil, domain.Validationf("origin and destination cannot be the same")
	}
	if err := validateTimeOfDay(input.DepartureTime, input.ArrivalTime); err != nil {
		return nil, err
	}

	depDate := truncateToDay(input.DepartureDate)
	conflicts, err := s.repo.ScheduleConflicts(ctx, id, depDate, input.DepartureTime)
	if err != nil {
		return nil, err
	}
	if conflicts {
		return nil, domain.Conflictf("another flight with the same schedule already exists")
	}

	updated, err := s.repo.Update(ctx, &domain.Flight{
		ID:            id,
		FlightNumber:  input.FlightNumber,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: depDate,
		DepartureTime: input.DepartureTime,
		ArrivalDate:   truncateToDay(input.ArrivalDate),
		ArrivalTime:   input.ArrivalTime,
		PriceCents:    input.PriceCents,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Archive is idempotent: archiving an archived flight succeeds silently.
func (s *FlightService) Archive(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Activate(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.SetActive(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
}

func synthFlightNumber() string {
	return fmt.Sprintf("PR%d", rand.IntN(900)+100)
}

func validateTimeOfDay(times ...string) error {
	for _, v := range times {
		if _, err := time.Parse("15:04", v); err != nil {
			return domain.Validationf("invalid time format, use HH:MM")
		}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ FlightUseCase = (*FlightService)(nil)
