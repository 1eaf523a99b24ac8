package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services/auth"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GoogleAuth godoc
// @Summary Exchange a Google credential for a verified identity
// @Description Verifies a Google ID token or access token and upserts the user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.AuthRequest true "Google credential"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/google [post]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Success: true, User: *user})
}
