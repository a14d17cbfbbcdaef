package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/access"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type PropertyHandler struct {
	properties services.IPropertyService
}

func NewPropertyHandler(properties services.IPropertyService) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

// propertyView maps the ?view= query parameter; unknown values fall back
// to the discovery view.
func propertyView(c *gin.Context) access.PropertyView {
	if c.Query("view") == string(access.ViewBooking) {
		return access.ViewBooking
	}
	return access.ViewDiscovery
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	created, err := h.properties.CreateProperty(c.Request.Context(), middleware.Principal(c), &property)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "property created", created)
}

func (h *PropertyHandler) List(c *gin.Context) {
	filter := services.PropertyListFilter{
		Purpose:  models.PropertyPurpose(c.Query("purpose")),
		Location: c.Query("location"),
		View:     propertyView(c),
	}
	properties, page, err := h.properties.ListProperties(c.Request.Context(), middleware.Principal(c), filter, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, properties, page)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	property, err := h.properties.GetProperty(c.Request.Context(), middleware.Principal(c), id, propertyView(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", property)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	property, err := h.properties.UpdateProperty(c.Request.Context(), middleware.Principal(c), id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "property updated", property)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.properties.DeleteProperty(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "property deleted", nil)
}

func (h *PropertyHandler) Related(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var q struct {
		Limit int `form:"limit"`
	}
	_ = c.ShouldBindQuery(&q)
	related, err := h.properties.RelatedProperties(c.Request.Context(), middleware.Principal(c), id, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", related)
}
