package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/versegallery/versegallery/internal/storage"
	"github.com/versegallery/versegallery/internal/users"
)

func newProfileRouter(t *testing.T) (*gin.Engine, *users.Service) {
	t.Helper()
	cfg := testConfig()
	uSvc := users.NewService(users.NewMemoryRepository())
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	NewProfileHandler(cfg, uSvc, store).Register(r.Group("/"))
	return r, uSvc
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestProfileUploadAndDownload(t *testing.T) {
	r, uSvc := newProfileRouter(t)
	require.NoError(t, uSvc.Register(t.Context(), "alice", "secret1"))

	body, ct := multipartImage(t, "profile_pic", "me.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/profile/alice/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/uploads/alice_profile.png")

	// profile now exposes the picture URL
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/profile/alice", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "profilePicture")

	// download streams it back as an attachment
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/download-profile/alice", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	require.Equal(t, "png-bytes", w.Body.String())
}

// presigningStore wraps a Storage and serves time-limited direct URLs the
// way an object-store backend does.
type presigningStore struct {
	storage.Storage
}

func (p *presigningStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.example.com/" + key + "?sig=abc", nil
}

func TestProfilePictureURLUsesPresigner(t *testing.T) {
	cfg := testConfig()
	uSvc := users.NewService(users.NewMemoryRepository())
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	NewProfileHandler(cfg, uSvc, &presigningStore{Storage: local}).Register(r.Group("/"))

	require.NoError(t, uSvc.Register(t.Context(), "alice", "secret1"))
	body, ct := multipartImage(t, "profile_pic", "me.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/profile/alice/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/profile/alice", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://objects.example.com/alice_profile.png?sig=abc")
}

func TestProfileUploadUnknownUser(t *testing.T) {
	r, _ := newProfileRouter(t)

	body, ct := multipartImage(t, "profile_pic", "me.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/profile/ghost/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUploadRejectsNonImage(t *testing.T) {
	r, uSvc := newProfileRouter(t)
	require.NoError(t, uSvc.Register(t.Context(), "alice", "secret1"))

	body, ct := multipartImage(t, "profile_pic", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest("POST", "/profile/alice/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Only image files are allowed!")
}

func TestProfileNotFound(t *testing.T) {
	r, _ := newProfileRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/profile/ghost", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/download-profile/ghost", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
