package domain

import "time"

// Flight departure/arrival times of day are stored as "HH:MM" strings;
// the calendar date lives in DepartureDate/ArrivalDate.
type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureDate  time.Time `json:"departure_date"`
	DepartureTime  string    `json:"departure_time"`
	ArrivalDate    time.Time `json:"arrival_date"`
	ArrivalTime    string    `json:"arrival_time"`
	PriceCents     int64     `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
