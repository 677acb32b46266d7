package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/versegallery/versegallery/internal/layer8"
	"github.com/versegallery/versegallery/pkg/logger"
	"github.com/versegallery/versegallery/pkg/middleware"
)

// Layer8Handler exposes the delegated identity handshake: the authorization
// URL for the provider's consent screen and the callback that completes the
// flow for the authenticated caller.
type Layer8Handler struct {
	handshake *layer8.Handshake
	validator middleware.SessionValidator
}

func NewLayer8Handler(h *layer8.Handshake, v middleware.SessionValidator) *Layer8Handler {
	return &Layer8Handler{handshake: h, validator: v}
}

func (h *Layer8Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/api/login/layer8/auth", h.AuthURL)
	rg.POST("/authorization-callback", middleware.AuthMiddleware(h.validator), h.Callback)
}

// AuthURL returns the provider consent-screen redirect. Stateless: the code
// comes back through the browser, not through anything held here.
func (h *Layer8Handler) AuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authURL": h.handshake.AuthorizationURL()})
}

// CallbackRequest carries the single-use authorization code delivered by the
// provider redirect.
type CallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// Callback completes the handshake for the caller identified by their own
// session credential. Provider-side failure detail is logged server-side and
// never forwarded to the client.
func (h *Layer8Handler) Callback(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	state, _, err := h.handshake.Run(c.Request.Context(), username, req.Code)
	if err != nil {
		logger.Errorf("layer8 callback for %s ended in %s: %v", username, state, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Layer8 auth failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Layer8 auth successful"})
}
