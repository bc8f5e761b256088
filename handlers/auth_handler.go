package handlers

import (
	"net/http"

	"catfish/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		respondError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"uid": user.UID, "username": user.Username, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": user.UID, "username": user.Username, "token": token})
}

// Guest mints an anonymous player identity. No body required.
func (h *AuthHandler) Guest(c *gin.Context) {
	uid, token, err := h.authService.GuestToken()
	if err != nil {
		respondError(c, "guest", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"uid": uid, "token": token})
}
