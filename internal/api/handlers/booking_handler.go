package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type BookingHandler struct {
	bookings services.IBookingService
}

func NewBookingHandler(bookings services.IBookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	booking, err := h.bookings.CreateBooking(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "booking created", booking)
}

func (h *BookingHandler) List(c *gin.Context) {
	filter := services.BookingListFilter{
		Status:      models.BookingStatus(c.Query("status")),
		BookingType: models.BookingType(c.Query("booking_type")),
	}
	bookings, page, err := h.bookings.ListBookings(c.Request.Context(), middleware.Principal(c), filter, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, bookings, page)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	booking, err := h.bookings.GetBooking(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", booking)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input services.UpdateBookingStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	booking, err := h.bookings.UpdateBookingStatus(c.Request.Context(), middleware.Principal(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "booking status updated", booking)
}

// Cancel handles DELETE on a booking, which is a cancellation rather than
// a removal.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input) // body is optional
	booking, err := h.bookings.CancelBooking(c.Request.Context(), middleware.Principal(c), id, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "booking cancelled", booking)
}
