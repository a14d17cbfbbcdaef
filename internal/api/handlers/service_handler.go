package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ServiceHandler exposes the private service API used by deploy tooling
// and end-to-end tests: graceful shutdown and mock email retrieval.
type ServiceHandler struct {
	rdb          *redis.Client
	shutdownChan chan<- struct{}
}

func NewServiceHandler(rdb *redis.Client, shutdownChan chan<- struct{}) *ServiceHandler {
	return &ServiceHandler{rdb: rdb, shutdownChan: shutdownChan}
}

// Shutdown asks the process to drain and exit.
func (h *ServiceHandler) Shutdown(c *gin.Context) {
	respondOK(c, http.StatusOK, "shutting down", nil)
	go func() { h.shutdownChan <- struct{}{} }()
}

// GetTestEmail returns the last mock email stored for an address and
// template. Only meaningful when the process runs with MOCK_SERVICES.
func (h *ServiceHandler) GetTestEmail(c *gin.Context) {
	address := c.Query("email")
	template := c.Query("template")
	if address == "" || template == "" {
		badRequest(c, "email and template are required")
		return
	}

	key := fmt.Sprintf("mockemail:%s:%s", address, template)
	raw, err := h.rdb.Get(c.Request.Context(), key).Result()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no email found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	var email map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &email); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", email)
}
