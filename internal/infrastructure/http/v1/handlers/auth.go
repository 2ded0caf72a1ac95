package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/auth"
)

// AuthHandler serves the two login endpoints.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type adminLoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"haslo" binding:"required"`
}

// LoginAdmin handles POST /login.
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req adminLoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.LoginAdmin(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
		"role":    result.Role,
		"token":   result.Token,
	})
}

type residentLoginRequest struct {
	Email  string `json:"email" binding:"required"`
	Number string `json:"numer" binding:"required"`
}

// LoginResident handles POST /login/resident.
func (h *AuthHandler) LoginResident(c *gin.Context) {
	var req residentLoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.LoginResident(c.Request.Context(), req.Email, req.Number)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
		"role":    result.Role,
		"token":   result.Token,
	})
}
