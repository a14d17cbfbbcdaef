package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type InquiryHandler struct {
	inquiries services.IInquiryService
}

func NewInquiryHandler(inquiries services.IInquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

func (h *InquiryHandler) Create(c *gin.Context) {
	var input services.CreateInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	inquiry, err := h.inquiries.CreateInquiry(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "inquiry submitted", inquiry)
}

// CreateSimple is the anonymous-friendly short form.
func (h *InquiryHandler) CreateSimple(c *gin.Context) {
	var input services.CreateSimpleInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	inquiry, err := h.inquiries.CreateSimpleInquiry(c.Request.Context(), middleware.Principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "inquiry submitted", inquiry)
}

func (h *InquiryHandler) List(c *gin.Context) {
	filter := services.InquiryListFilter{
		Status: models.InquiryStatus(c.Query("status")),
		Type:   models.InquiryType(c.Query("type")),
	}
	inquiries, page, err := h.inquiries.ListInquiries(c.Request.Context(), middleware.Principal(c), filter, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, inquiries, page)
}

func (h *InquiryHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	inquiry, err := h.inquiries.GetInquiry(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", inquiry)
}

// updateInquiryBody distinguishes an absent assigned_to from an explicit
// null, which clears the assignment.
type updateInquiryBody struct {
	Status     models.InquiryStatus   `json:"status"`
	Priority   models.InquiryPriority `json:"priority"`
	Notes      string                 `json:"notes"`
	AssignedTo json.RawMessage        `json:"assigned_to"`
}

func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var body updateInquiryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input := services.UpdateInquiryStatusInput{
		Status:   body.Status,
		Priority: body.Priority,
		Notes:    body.Notes,
	}
	if len(body.AssignedTo) > 0 {
		if string(body.AssignedTo) == "null" {
			var cleared *primitive.ObjectID
			input.AssignedTo = &cleared
		} else {
			var hex string
			if err := json.Unmarshal(body.AssignedTo, &hex); err != nil {
				badRequest(c, "invalid assigned_to")
				return
			}
			assignee, err := primitive.ObjectIDFromHex(hex)
			if err != nil {
				badRequest(c, "invalid assigned_to")
				return
			}
			ptr := &assignee
			input.AssignedTo = &ptr
		}
	}

	inquiry, err := h.inquiries.UpdateInquiryStatus(c.Request.Context(), middleware.Principal(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "inquiry updated", inquiry)
}

func (h *InquiryHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.inquiries.DeleteInquiry(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "inquiry deleted", nil)
}
