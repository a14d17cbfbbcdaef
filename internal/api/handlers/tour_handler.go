package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type TourHandler struct {
	tours services.ITourService
}

func NewTourHandler(tours services.ITourService) *TourHandler {
	return &TourHandler{tours: tours}
}

func (h *TourHandler) Create(c *gin.Context) {
	var tour models.Tour
	if err := c.ShouldBindJSON(&tour); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	created, err := h.tours.CreateTour(c.Request.Context(), middleware.Principal(c), &tour)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "tour created", created)
}

func (h *TourHandler) List(c *gin.Context) {
	tours, page, err := h.tours.ListTours(c.Request.Context(), middleware.Principal(c), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, tours, page)
}

func (h *TourHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	tour, err := h.tours.GetTour(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", tour)
}

func (h *TourHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	tour, err := h.tours.UpdateTour(c.Request.Context(), middleware.Principal(c), id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tour updated", tour)
}

func (h *TourHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.tours.DeleteTour(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tour deleted", nil)
}
