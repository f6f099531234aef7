package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, tokens TokenVerifier) {
	router.GET("/search", h.search)

	authed := router.Group("", AuthMiddleware(tokens))
	authed.GET("/:flightId", h.get)

	admin := router.Group("", AuthMiddleware(tokens), AdminOnly())
	admin.POST("/create-flight", h.create)
	admin.GET("/all-flights", h.list)
	admin.PUT("/update/:flightId", h.update)
	admin.PATCH("/archive/:flightId", h.archive)
	admin.PATCH("/activate/:flightId", h.activate)
}

type flightRequest struct {
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	DepartureTime string `json:"departure_time"`
	ArrivalDate   string `json:"arrival_date"`
	ArrivalTime   string `json:"arrival_time"`
	PriceCents    int64  `json:"price_cents"`
	TotalSeats    int    `json:"total_seats"`
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}
	depDate, err := parseDate(req.DepartureDate)
	if err != nil {
		fail(c, err)
		return
	}
	arrDate, err := parseDate(req.ArrivalDate)
	if err != nil {
		fail(c, err)
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: depDate,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   arrDate,
		ArrivalTime:   req.ArrivalTime,
		PriceCents:    req.PriceCents,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "flight created successfully", "flight": flight})
}

func (h *FlightHandler) search(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}
	var returnDate *time.Time
	if raw := c.Query("return_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			fail(c, err)
			return
		}
		returnDate = &parsed
	}

	result, err := h.service.Search(c.Request.Context(), flights.SearchInput{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        date,
		ReturnDate:  returnDate,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "flights found",
		"count":             len(result.DepartureFlights),
		"departure_flights": result.DepartureFlights,
		"return_flights":    result.ReturnFlights,
	})
}

func (h *FlightHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all flights", "count": len(all), "flights": all})
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight found", "flight": flight})
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}
	depDate, err := parseDate(req.DepartureDate)
	if err != nil {
		fail(c, err)
		return
	}
	arrDate, err := parseDate(req.ArrivalDate)
	if err != nil {
		fail(c, err)
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, flights.UpdateFlightInput{
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: depDate,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   arrDate,
		ArrivalTime:   req.ArrivalTime,
		PriceCents:    req.PriceCents,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "flight updated successfully", "flight": flight})
}

func (h *FlightHandler) archive(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight archived successfully", "flight": flight})
}

func (h *FlightHandler) activate(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight activated successfully", "flight": flight})
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("flightId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid flight id", "error": "validation"})
		return 0, false
	}
	return id, true
}
