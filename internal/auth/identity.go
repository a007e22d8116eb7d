package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClientConfig configures a client-credentials token fetch against
// an OpenID Connect issuer (§4.13).
type IdentityClientConfig struct {
	IssuerURI    string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// tokenResponse mirrors the Keycloak token endpoint's response shape.
// Unknown fields (refresh_token, session_state, ...) are ignored.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// IdentityClient fetches and caches client-credentials bearer tokens from an
// OpenID Connect issuer, refetching once the cached token is near expiry.
type IdentityClient struct {
	cfg    IdentityClientConfig
	client *http.Client

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewIdentityClient builds an IdentityClient.
func NewIdentityClient(cfg IdentityClientConfig) *IdentityClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IdentityClient{cfg: cfg, client: client}
}

// nearExpiryMargin is how far ahead of a cached token's expiry we refetch,
// so a request in flight never hands out a token that expires mid-call.
const nearExpiryMargin = 30 * time.Second

// Token returns a cached bearer token, fetching a new one if the cache is
// empty or near expiry. Satisfies client.TokenSource.
func (c *IdentityClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != "" && time.Now().Add(nearExpiryMargin).Before(c.expiresAt) {
		return c.cached, nil
	}

	token, expiresAt, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	c.cached = token
	c.expiresAt = expiresAt
	return token, nil
}

func (c *IdentityClient) fetch(ctx context.Context) (string, time.Time, error) {
	tokenURL := c.cfg.IssuerURI + "/protocol/openid-connect/token"

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("request token from %s: %w", c.cfg.IssuerURI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token request failed: %d %s", resp.StatusCode, string(body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}

	return parsed.AccessToken, expiryFromToken(parsed.AccessToken, parsed.ExpiresIn), nil
}

// expiryFromToken prefers the access token's own "exp" claim (no signature
// check needed, the issuer just minted it for us) and falls back to
// now+expires_in when the token isn't a parseable JWT.
func expiryFromToken(accessToken string, expiresIn int) time.Time {
	parser := jwt.NewParser()
	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
