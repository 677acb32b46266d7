package layer8

import (
	"context"

	"github.com/versegallery/versegallery/internal/models"
	"github.com/versegallery/versegallery/internal/users"
	"github.com/versegallery/versegallery/pkg/logger"
	"github.com/versegallery/versegallery/pkg/metrics"
)

// State tracks the handshake's progress through its sequential stages.
type State int

const (
	StateIdle State = iota
	StateAwaitingCode
	StateExchanging
	StateSynchronizingMetadata
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateExchanging:
		return "exchanging"
	case StateSynchronizingMetadata:
		return "synchronizing_metadata"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Handshake sequences the delegated identity flow: exchange the code for an
// access token, fetch provider metadata with it, merge into the caller's
// local record. The two outbound calls are strictly sequential since the
// token from the first is input to the second.
type Handshake struct {
	client *Client
	users  *users.Service
}

func NewHandshake(client *Client, usersSvc *users.Service) *Handshake {
	return &Handshake{client: client, users: usersSvc}
}

// AuthorizationURL starts a handshake: the caller is redirected to the
// provider and no server-side state is retained until the callback.
func (h *Handshake) AuthorizationURL() string {
	return h.client.BuildAuthorizationURL()
}

// Run drives the callback half of the handshake for the authenticated
// username. The merge target is the caller's own identity, never an
// externally supplied one. On any failure the final state is StateError and
// the stored record is untouched; the metadata endpoint is never contacted
// after a failed exchange.
func (h *Handshake) Run(ctx context.Context, username, code string) (State, *models.User, error) {
	tok, err := h.client.ExchangeCode(ctx, code)
	if err != nil {
		logger.Errorf("handshake(%s): code exchange failed: %v", username, err)
		metrics.HandshakeFailed.WithLabelValues(StateExchanging.String()).Inc()
		return StateError, nil, err
	}

	profile, err := h.client.FetchMetadata(ctx, tok.AccessToken)
	if err != nil {
		logger.Errorf("handshake(%s): metadata fetch failed: %v", username, err)
		metrics.HandshakeFailed.WithLabelValues(StateSynchronizingMetadata.String()).Inc()
		return StateError, nil, err
	}

	u, err := h.users.MergeMetadata(ctx, username, profile.ToMetadata())
	if err != nil {
		logger.Errorf("handshake(%s): metadata merge failed: %v", username, err)
		metrics.HandshakeFailed.WithLabelValues(StateSynchronizingMetadata.String()).Inc()
		return StateError, nil, ErrMetadataFailed
	}

	metrics.HandshakeCompleted.Inc()
	logger.Infof("handshake(%s): complete", username)
	return StateComplete, u, nil
}
