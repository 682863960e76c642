package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"folio/internal/middleware"
	"folio/internal/services"
)

// AuthHandler handles editor login.
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// LoginRequest represents the request payload for editor login
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the editor access token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the editor password for an access token
// @Summary     Editor login
// @Description Authenticate with the editor password and receive a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Editor password"
// @Success     200 {object} LoginResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid password"
// @Failure     403 {object} ErrorResponse "Editing disabled"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.authService.Authenticate(req.Password); err != nil {
		h.auditService.Log("anonymous", "LOGIN_FAILED", "auth", "", c.ClientIP(), nil)
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := middleware.GenerateAccessToken(middleware.EditorSubject)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(middleware.EditorSubject, "LOGIN", "auth", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}
