package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type ContactHandler struct {
	contacts services.IContactService
}

func NewContactHandler(contacts services.IContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Create(c *gin.Context) {
	var input services.CreateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	form, err := h.contacts.CreateContact(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "message received", form)
}

func (h *ContactHandler) List(c *gin.Context) {
	status := models.ContactStatus(c.Query("status"))
	forms, page, err := h.contacts.ListContacts(c.Request.Context(), middleware.Principal(c), status, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, forms, page)
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	form, err := h.contacts.GetContact(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", form)
}

func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Status models.ContactStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	form, err := h.contacts.UpdateContactStatus(c.Request.Context(), middleware.Principal(c), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "contact updated", form)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.contacts.DeleteContact(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "contact deleted", nil)
}
