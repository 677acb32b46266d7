package layer8

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/versegallery/versegallery/internal/models"
	"github.com/versegallery/versegallery/internal/users"
)

func metadataWithBio(bio string) models.Metadata {
	return models.Metadata{Bio: &bio}
}

// provider simulates the Layer8 token and metadata endpoints with
// controllable outcomes and per-endpoint call counts.
type provider struct {
	tokenStatus   int
	metadataBody  map[string]interface{}
	tokenCalls    int
	metadataCalls int
}

func (p *provider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/oauth", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls++
		if p.tokenStatus != 0 && p.tokenStatus != http.StatusOK {
			http.Error(w, "provider error", p.tokenStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"access_token": "T1", "token_type": "Bearer", "expires_in_minutes": 60},
		})
	})
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		p.metadataCalls++
		_ = json.NewEncoder(w).Encode(p.metadataBody)
	})
	return mux
}

func setupHandshake(t *testing.T, p *provider) (*Handshake, *users.Service) {
	t.Helper()
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)

	usersSvc := users.NewService(users.NewMemoryRepository())
	require.NoError(t, usersSvc.Register(context.Background(), "alice", "secret1"))

	return NewHandshake(NewClient(testRegistration(srv.URL)), usersSvc), usersSvc
}

func TestHandshakeComplete(t *testing.T) {
	p := &provider{metadataBody: map[string]interface{}{
		"is_success": true,
		"data":       map[string]interface{}{"is_email_verified": true, "country": "Canada"},
	}}
	h, usersSvc := setupHandshake(t, p)

	state, u, err := h.Run(context.Background(), "alice", "code-1")
	require.NoError(t, err)
	require.Equal(t, StateComplete, state)
	require.True(t, *u.Metadata.EmailVerified)
	require.Equal(t, "Canada", *u.Metadata.Country)

	// merge landed in the store, not just the returned copy
	stored, err := usersSvc.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Canada", *stored.Metadata.Country)

	require.Equal(t, 1, p.tokenCalls)
	require.Equal(t, 1, p.metadataCalls)
}

func TestHandshakeExchangeFailureSkipsMetadata(t *testing.T) {
	p := &provider{tokenStatus: http.StatusBadGateway}
	h, usersSvc := setupHandshake(t, p)

	state, _, err := h.Run(context.Background(), "alice", "code-1")
	require.Equal(t, StateError, state)
	require.ErrorIs(t, err, ErrExchangeFailed)

	// the metadata endpoint is never contacted after a failed exchange
	require.Equal(t, 0, p.metadataCalls)

	stored, err := usersSvc.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Nil(t, stored.Metadata)
}

func TestHandshakeMetadataFailureLeavesRecordUntouched(t *testing.T) {
	p := &provider{metadataBody: map[string]interface{}{"is_success": false}}
	h, usersSvc := setupHandshake(t, p)

	// pre-existing metadata must survive byte-for-byte
	bio := "poet"
	_, err := usersSvc.MergeMetadata(context.Background(), "alice", metadataWithBio(bio))
	require.NoError(t, err)
	before, err := usersSvc.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)

	state, _, err := h.Run(context.Background(), "alice", "code-1")
	require.Equal(t, StateError, state)
	require.ErrorIs(t, err, ErrMetadataFailed)

	after, err := usersSvc.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, before.Metadata, after.Metadata)
}

func TestHandshakeUnknownUser(t *testing.T) {
	p := &provider{metadataBody: map[string]interface{}{
		"is_success": true,
		"data":       map[string]interface{}{"country": "Canada"},
	}}
	h, _ := setupHandshake(t, p)

	state, _, err := h.Run(context.Background(), "ghost", "code-1")
	require.Equal(t, StateError, state)
	require.ErrorIs(t, err, ErrMetadataFailed)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "complete", StateComplete.String())
	require.Equal(t, "error", StateError.String())
}
