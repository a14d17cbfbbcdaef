package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

// respondOK writes the standard success envelope.
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondList writes a paged success envelope.
func respondList(c *gin.Context, data interface{}, page services.PageResult) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        data,
		"page":        page.Page,
		"limit":       page.Limit,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a 500 with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var validation *apperrors.ValidationError
	var notFound *apperrors.NotFoundError
	var unauthorized *apperrors.UnauthorizedError
	var forbidden *apperrors.ForbiddenError
	var conflict *apperrors.ConflictError

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		message = validation.Error()
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		message = notFound.Error()
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
		message = unauthorized.Error()
	case errors.As(err, &forbidden):
		status = http.StatusForbidden
		message = forbidden.Error()
	case errors.As(err, &conflict):
		// State conflicts surface as plain 400s; the client fixes its
		// request the same way it would for a validation failure.
		status = http.StatusBadRequest
		message = conflict.Error()
	default:
		log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// badRequest writes a 400 for malformed request bodies or parameters.
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// objectIDParam parses the :id path parameter.
func objectIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageRequest reads page/limit query parameters; services normalize them.
func pageRequest(c *gin.Context) services.PageRequest {
	var q struct {
		Page  int `form:"page"`
		Limit int `form:"limit"`
	}
	_ = c.ShouldBindQuery(&q)
	return services.PageRequest{Page: q.Page, Limit: q.Limit}
}
