package layer8

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/versegallery/versegallery/internal/config"
	"github.com/versegallery/versegallery/internal/models"
)

var (
	// ErrExchangeFailed covers every failure of the code exchange: transport
	// errors, non-2xx responses, unparseable bodies. Authorization codes are
	// single-use, so none of these are retried.
	ErrExchangeFailed = errors.New("layer8 code exchange failed")
	// ErrMetadataFailed covers metadata-endpoint failures, including a
	// well-formed response with is_success=false.
	ErrMetadataFailed = errors.New("layer8 metadata fetch failed")
)

// Provider endpoint paths under the configured base URL.
const (
	authorizePath = "/authorize"
	tokenPath     = "/api/oauth"
	metadataPath  = "/api/user"
)

// TokenResponse is the provider's token-endpoint payload. The access token
// is an opaque bearer credential; it lives only for the duration of one
// metadata fetch and is never persisted.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// ProfileData is the provider's view of the user, delivered by the metadata
// endpoint. Pointer fields preserve partial-update semantics: absent fields
// must not clobber local values.
type ProfileData struct {
	IsEmailVerified *bool   `json:"is_email_verified,omitempty"`
	Country         *string `json:"country,omitempty"`
	DisplayName     *string `json:"display_name,omitempty"`
	Color           *string `json:"color,omitempty"`
	Bio             *string `json:"bio,omitempty"`
}

// ToMetadata maps provider profile fields onto the local metadata record.
func (d ProfileData) ToMetadata() models.Metadata {
	return models.Metadata{
		EmailVerified: d.IsEmailVerified,
		Country:       d.Country,
		DisplayName:   d.DisplayName,
		Color:         d.Color,
		Bio:           d.Bio,
	}
}

// Client is the relying-party side of the Layer8 handshake. It holds the
// process-wide client registration, which is read-only after startup.
type Client struct {
	cfg  config.Layer8Config
	http *http.Client
}

func NewClient(cfg config.Layer8Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// BuildAuthorizationURL composes the consent-screen redirect for the
// registered client. Deterministic, no local state: the provider round-trip
// carries the authorization code back to us.
func (c *Client) BuildAuthorizationURL() string {
	conf := &oauth2.Config{
		ClientID:    c.cfg.ClientID,
		RedirectURL: c.cfg.CallbackURL,
		Scopes:      c.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL: c.cfg.BaseURL + authorizePath,
		},
	}
	return conf.AuthCodeURL("")
}

// ExchangeCode trades a single-use authorization code for an access token.
// It issues exactly one POST: replaying a code is a security hazard, not a
// transient fault, so no retry on any failure.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	body := map[string]string{
		"authorization_code":  code,
		"redirect_uri":        c.cfg.CallbackURL,
		"client_oauth_uuid":   c.cfg.ClientID,
		"client_oauth_secret": c.cfg.ClientSecret,
	}
	var resp struct {
		Data TokenResponse `json:"data"`
	}
	if err := c.postJSON(ctx, c.cfg.BaseURL+tokenPath, "", body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if resp.Data.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", ErrExchangeFailed)
	}
	return &resp.Data, nil
}

// FetchMetadata retrieves the provider's profile record using the bearer
// access token obtained from ExchangeCode.
func (c *Client) FetchMetadata(ctx context.Context, accessToken string) (*ProfileData, error) {
	body := map[string]string{
		"client_oauth_uuid":   c.cfg.ClientID,
		"client_oauth_secret": c.cfg.ClientSecret,
	}
	var resp struct {
		IsSuccess bool        `json:"is_success"`
		Data      ProfileData `json:"data"`
	}
	if err := c.postJSON(ctx, c.cfg.BaseURL+metadataPath, accessToken, body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	if !resp.IsSuccess {
		return nil, fmt.Errorf("%w: provider reported is_success=false", ErrMetadataFailed)
	}
	return &resp.Data, nil
}

func (c *Client) postJSON(ctx context.Context, url, bearer string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// detail stays server-side; callers surface a generic failure
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, string(rb))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
