package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
)

type AuthHandler struct {
	users services.IUserService
}

func NewAuthHandler(users services.IUserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, token, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "account created", gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, token, err := h.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"user": user, "token": token})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.Principal(c)
	user, err := h.users.FindByID(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", user)
}
