package api

import (
	"net/http"

	"github.com/Domenick1991/flightinventory/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID   int64  `json:"user_id" binding:"required,gt=0"`
	FlightID int64  `json:"flight_id" binding:"required,gt=0"`
	Class    string `json:"class" binding:"required,seat_class"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/users/:id/bookings", h.list)
	router.DELETE("/users/:id/bookings/:bookingId", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	b, err := h.service.Book(c.Request.Context(), req.UserID, req.FlightID, req.Class)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	bookings, err := h.service.ViewBookings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		item := toBookingResponse(b.Booking)
		flight := toFlightResponse(b.Flight)
		item.Flight = &flight
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), userID, bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "cancelled",
		"booking_id":  cancelled.ID,
		"flight_id":   cancelled.FlightID,
		"seat_number": cancelled.SeatNumber,
	})
}
