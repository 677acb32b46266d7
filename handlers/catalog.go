package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/versegallery/versegallery/internal/catalog"
)

// CatalogHandler serves the read-only poem and image endpoints backed by the
// in-memory mock catalog.
type CatalogHandler struct {
	store *catalog.Store
}

func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

func (h *CatalogHandler) Register(r *gin.Engine, imagesDir string) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello there!"})
	})
	r.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "Bro, ur poems coming soon. Relax a little.")
	})
	r.GET("/poems", h.Poems)
	r.GET("/images", h.Images)
	if imagesDir != "" {
		r.Static("/images/files", imagesDir)
	}
}

// Poems returns the whole catalog, or a single poem when ?id= is given.
func (h *CatalogHandler) Poems(c *gin.Context) {
	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusOK, h.store.Poems())
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poem id"})
		return
	}
	p, err := h.store.PoemByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poem not found!"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Images returns the gallery listing, or the first name match when ?name= is
// given. Relative URLs are expanded against the request host.
func (h *CatalogHandler) Images(c *gin.Context) {
	base := requestBaseURL(c)
	name := c.Query("name")
	if name == "" {
		imgs := h.store.Images()
		for i := range imgs {
			imgs[i].URL = base + imgs[i].URL
		}
		c.JSON(http.StatusOK, imgs)
		return
	}
	img, err := h.store.ImageByName(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found!"})
		return
	}
	img.URL = base + img.URL
	c.JSON(http.StatusOK, img)
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
