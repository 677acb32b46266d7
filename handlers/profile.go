package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/versegallery/versegallery/internal/config"
	"github.com/versegallery/versegallery/internal/models"
	"github.com/versegallery/versegallery/internal/storage"
	"github.com/versegallery/versegallery/internal/users"
	"github.com/versegallery/versegallery/pkg/logger"
)

// ProfileHandler serves profile pages and profile-picture upload/download.
type ProfileHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	store    storage.Storage
}

func NewProfileHandler(cfg *config.Config, u *users.Service, store storage.Storage) *ProfileHandler {
	return &ProfileHandler{cfg: cfg, usersSvc: u, store: store}
}

func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile/:username", h.GetProfile)
	rg.POST("/profile/:username/upload", h.Upload)
	rg.GET("/download-profile/:username", h.Download)
}

// GetProfile returns the public view of a user: username, metadata, and a
// fully qualified profile-picture URL when one was uploaded.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	u, err := h.usersSvc.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
		return
	}
	resp := gin.H{"username": u.Username, "metadata": u.Metadata}
	if u.Metadata != nil && u.Metadata.ProfilePicture != nil {
		resp["profilePicture"] = h.pictureURL(c, *u.Metadata.ProfilePicture)
	}
	c.JSON(http.StatusOK, resp)
}

// pictureURL resolves the stored picture path to a client-usable URL.
// Object stores that can presign get a time-limited direct URL; otherwise
// the path is served by the static uploads mount on this host.
func (h *ProfileHandler) pictureURL(c *gin.Context, path string) string {
	if p, ok := h.store.(storage.URLPresigner); ok {
		signed, err := p.PresignedURL(c.Request.Context(), filepath.Base(path), 15*time.Minute)
		if err == nil {
			return signed
		}
		logger.Warnf("presigning profile picture %s failed: %v", path, err)
	}
	return requestBaseURL(c) + path
}

// Upload stores a profile picture for the user under <username>_profile<ext>
// and records the relative path in the user's metadata. Only image/* files
// are accepted, capped by the configured size limit.
func (h *ProfileHandler) Upload(c *gin.Context) {
	username := c.Param("username")
	if !h.usersSvc.Exists(c.Request.Context(), username) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	fh, err := c.FormFile("profile_pic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded or invalid file type"})
		return
	}
	if fh.Size > h.cfg.Uploads.MaxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed!"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded or invalid file type"})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("%s_profile%s", username, filepath.Ext(fh.Filename))
	if err := h.store.Upload(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("profile upload for %s failed: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	path := "/uploads/" + key
	if _, err := h.usersSvc.MergeMetadata(c.Request.Context(), username, models.Metadata{ProfilePicture: &path}); err != nil {
		logger.Errorf("profile metadata update for %s failed: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture uploaded successfully",
		"path":    path,
	})
}

// Download streams the stored profile picture with an attachment disposition.
func (h *ProfileHandler) Download(c *gin.Context) {
	username := c.Param("username")
	u, err := h.usersSvc.GetByUsername(c.Request.Context(), username)
	if err != nil || u.Metadata == nil || u.Metadata.ProfilePicture == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile picture not found!"})
		return
	}

	key := filepath.Base(*u.Metadata.ProfilePicture)
	rc, err := h.store.Download(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile picture not found!"})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil && !errors.Is(err, io.EOF) {
		logger.Warnf("profile download for %s interrupted: %v", username, err)
	}
}
