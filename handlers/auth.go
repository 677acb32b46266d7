package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/versegallery/versegallery/internal/config"
	"github.com/versegallery/versegallery/internal/sessions"
	"github.com/versegallery/versegallery/internal/tokens"
	"github.com/versegallery/versegallery/internal/users"
	"github.com/versegallery/versegallery/pkg/logger"
	"github.com/versegallery/versegallery/pkg/middleware"
)

// CredentialsRequest is the register/login payload.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies for local credential endpoints.
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	issuer   *tokens.Issuer
}

func NewAuthHandler(cfg *config.Config, u *users.Service, iss *tokens.Issuer) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, issuer: iss}
}

// Register routes
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/register", h.RegisterUser)
	rg.POST("/login", h.Login)
	rg.POST("/logout", middleware.AuthMiddleware(h.issuer), h.Logout)
}

// RegisterUser creates a local account with a salted password digest and no
// metadata.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.usersSvc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		logger.Errorf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully!"})
}

// Login verifies the password and issues a session credential. The error
// body never reveals whether the username or the password was wrong.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.usersSvc.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// same response for unknown user and bad password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials!"})
		return
	}
	token, err := h.issuer.Issue(u.Username)
	if err != nil {
		logger.Errorf("failed to issue session for %s: %v", u.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

// Logout blacklists the presented session credential for its remaining TTL.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, ok := c.Get("session_token")
	token, _ := raw.(string)
	if !ok || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	ttl := h.issuer.TTL()
	if exp, err := parseExpFromJWT(token); err == nil {
		if rem := time.Until(exp); rem > 0 {
			ttl = rem
		}
	}
	if err := sessions.BlacklistAccessToken(c.Request.Context(), token, ttl); err != nil {
		logger.Errorf("failed to blacklist session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim as time.Time.
// This performs payload-only parsing (no signature verification) and is suitable
// for computing remaining TTLs for blacklisting purposes.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	payload := parts[1]
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		// try standard base64 (pad) as a fallback
		b, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return time.Time{}, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
