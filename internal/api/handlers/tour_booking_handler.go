package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type TourBookingHandler struct {
	bookings services.ITourBookingService
}

func NewTourBookingHandler(bookings services.ITourBookingService) *TourBookingHandler {
	return &TourBookingHandler{bookings: bookings}
}

// Create books a tour. The tour comes from the path, the rest from the body.
func (h *TourBookingHandler) Create(c *gin.Context) {
	tourID, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input services.CreateTourBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	input.TourID = tourID
	booking, err := h.bookings.CreateTourBooking(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "tour booking created", booking)
}

func (h *TourBookingHandler) List(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))
	bookings, page, err := h.bookings.ListTourBookings(c.Request.Context(), middleware.Principal(c), status, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, bookings, page)
}

func (h *TourBookingHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	booking, err := h.bookings.GetTourBooking(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", booking)
}

func (h *TourBookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input services.UpdateBookingStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	booking, err := h.bookings.UpdateTourBookingStatus(c.Request.Context(), middleware.Principal(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tour booking status updated", booking)
}

func (h *TourBookingHandler) Cancel(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input) // body is optional
	booking, err := h.bookings.CancelTourBooking(c.Request.Context(), middleware.Principal(c), id, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tour booking cancelled", booking)
}
