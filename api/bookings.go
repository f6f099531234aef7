package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, tokens TokenVerifier) {
	authed := router.Group("", AuthMiddleware(tokens))
	authed.POST("/create", h.create)
	authed.GET("/my-bookings", h.myBookings)
	authed.PATCH("/cancel/:bookingId", h.cancel)

	admin := router.Group("", AuthMiddleware(tokens), AdminOnly())
	admin.GET("/all", h.allBookings)
	admin.PATCH("/confirm/:bookingId", h.confirm)
}

type createBookingRequest struct {
	FlightID         int64                    `json:"flight_id"`
	Passengers       []booking.PassengerInput `json:"passengers"`
	BookingType      string                   `json:"booking_type"`
	TotalAmountCents int64                    `json:"total_amount_cents"`
	PaymentMethod    string                   `json:"payment_method"`
	FlightNumber     string                   `json:"flight_number"`
	DepartureDate    string                   `json:"departure_date"`
	ReturnDate       string                   `json:"return_date"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}
	depDate, err := parseDate(req.DepartureDate)
	if err != nil {
		fail(c, err)
		return
	}
	var returnDate *time.Time
	if req.ReturnDate != "" {
		parsed, err := parseDate(req.ReturnDate)
		if err != nil {
			fail(c, err)
			return
		}
		returnDate = &parsed
	}

	created, err := h.service.CreateBooking(c.Request.Context(), principalFrom(c), booking.CreateBookingInput{
		FlightID:         req.FlightID,
		Passengers:       req.Passengers,
		BookingType:      domain.BookingType(req.BookingType),
		TotalAmountCents: req.TotalAmountCents,
		PaymentMethod:    domain.PaymentMethod(req.PaymentMethod),
		FlightNumber:     req.FlightNumber,
		DepartureDate:    depDate,
		ReturnDate:       returnDate,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "booking created successfully",
		"booking":    created.Booking,
		"passengers": created.Passengers,
	})
}

func (h *BookingHandler) myBookings(c *gin.Context) {
	bookings, err := h.service.MyBookings(c.Request.Context(), principalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bookings retrieved successfully", "bookings": bookings})
}

func (h *BookingHandler) allBookings(c *gin.Context) {
	bookings, err := h.service.AllBookings(c.Request.Context(), principalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bookings retrieved successfully", "bookings": bookings})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled successfully", "booking": cancelled})
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking confirmed successfully", "booking": confirmed})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("bookingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid booking id", "error": "validation"})
		return 0, false
	}
	return id, true
}
