package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type BookingType string

const (
	BookingTypeOneWay    BookingType = "oneWay"
	BookingTypeRoundTrip BookingType = "roundTrip"
)

type PaymentMethod string

const (
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDebitCard     PaymentMethod = "debit_card"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
	PaymentPaypal        PaymentMethod = "paypal"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
)

// MaxPassengers bounds the passenger list of a single booking.
const MaxPassengers = 4

// Booking holds a snapshot of the flight number and departure date taken
// at creation time; FlightID stays the authoritative reference.
type Booking struct {
	ID               int64         `json:"id"`
	Reference        string        `json:"reference"`
	UserID           int64         `json:"user_id"`
	FlightID         int64         `json:"flight_id"`
	FlightNumber     string        `json:"flight_number"`
	BookingType      BookingType   `json:"booking_type"`
	Status           BookingStatus `json:"status"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	DepartureDate    time.Time     `json:"departure_date"`
	ReturnDate       *time.Time    `json:"return_date,omitempty"`
	Seats            int           `json:"seats"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Passenger rows are owned by their booking and never updated after creation.
type Passenger struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookingDetails is a booking with its flight and passengers joined in,
// the shape returned by the listing operations.
type BookingDetails struct {
	Booking
	Flight     *Flight     `json:"flight,omitempty"`
	Passengers []Passenger `json:"passengers,omitempty"`
}

func ValidBookingType(t BookingType) bool {
	return t == BookingTypeOneWay || t == BookingTypeRoundTrip
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentDigitalWallet, PaymentPaypal, PaymentBankTransfer:
		return true
	}
	return false
}
