package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/service/flights"
	"github.com/Domenick1991/flightinventory/internal/service/inventory"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flights   flights.FlightUseCase
	inventory inventory.InventoryUseCase
}

type createFlightRequest struct {
	FlightNumber  string    `json:"flight_number" binding:"required"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
}

type searchFlightsQuery struct {
	From string    `form:"from" binding:"required"`
	To   string    `form:"to" binding:"required"`
	Date time.Time `form:"date" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,flight_status"`
}

type seatClassRequest struct {
	Class          string `json:"class" binding:"required,seat_class"`
	AvailableSeats int    `json:"available_seats" binding:"gte=0"`
	FareCents      int64  `json:"fare_cents" binding:"gt=0"`
}

type configureSeatClassesRequest struct {
	SeatClasses []seatClassRequest `json:"seat_classes" binding:"required,min=1,dive"`
}

type setFareRequest struct {
	FareCents int64 `json:"fare_cents"`
}

func NewFlightHandler(flights flights.FlightUseCase, inventory inventory.InventoryUseCase) *FlightHandler {
	return &FlightHandler{flights: flights, inventory: inventory}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	group := router.Group("/flights")
	group.POST("", h.create)
	group.GET("/search", h.search)
	group.GET("/:id", h.get)
	group.PATCH("/:id/status", h.updateStatus)
	group.POST("/:id/seat-classes", h.configureSeatClasses)
	group.PUT("/:id/fares/:class", h.setFare)
	group.GET("/:id/fares/:class", h.getFare)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	flight, err := h.flights.AddFlight(c.Request.Context(), flights.AddFlightInput{
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchFlightsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	found, err := h.flights.Search(c.Request.Context(), q.From, q.To, q.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]flightResponse, 0, len(found))
	for _, f := range found {
		resp = append(resp, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := h.flights.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	flight, err := h.flights.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) configureSeatClasses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req configureSeatClassesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	inputs := make([]inventory.SeatClassInput, 0, len(req.SeatClasses))
	for _, sc := range req.SeatClasses {
		inputs = append(inputs, inventory.SeatClassInput{Class: sc.Class, AvailableSeats: sc.AvailableSeats, FareCents: sc.FareCents})
	}

	created, err := h.inventory.ConfigureSeatClasses(c.Request.Context(), id, inputs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSeatClassResponses(created))
}

func (h *FlightHandler) setFare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	sc, err := h.inventory.SetFare(c.Request.Context(), id, c.Param("class"), req.FareCents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSeatClassResponse(*sc))
}

func (h *FlightHandler) getFare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sc, err := h.inventory.GetFare(c.Request.Context(), id, c.Param("class"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSeatClassResponse(*sc))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, domain.InvalidArgument("invalid %s", name))
		return 0, false
	}
	return id, true
}
