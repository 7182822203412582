package goatflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Endpoints used by credential bootstrap and refresh.
const (
	loginPath         = "/api/auth/login"
	refreshPath       = "/api/auth/refresh"
	oauth2RefreshPath = "/api/oauth2/refresh"
)

// DefaultExpiryMargin is subtracted from a token's expiry when deciding
// whether it is still usable, so a token about to expire mid-flight is
// refreshed before dispatch instead of bouncing off a 401.
const DefaultExpiryMargin = 30 * time.Second

// AuthStrategy produces per-request credentials and renews them when stale.
// The request pipeline is variant-agnostic: it only ever calls these three
// methods.
type AuthStrategy interface {
	// Apply attaches the current credential to an outgoing request.
	Apply(req *http.Request)
	// IsExpired reports whether the credential needs a refresh before use.
	IsExpired() bool
	// Refresh renews the credential. Concurrent callers share a single
	// in-flight renewal and its outcome.
	Refresh(ctx context.Context) error
}

// apiKeyStrategy authenticates with a fixed key. It never expires and
// refreshing is a no-op success.
type apiKeyStrategy struct {
	key string
}

func (s *apiKeyStrategy) Apply(req *http.Request) {
	req.Header.Set("X-API-Key", s.key)
}

func (s *apiKeyStrategy) IsExpired() bool { return false }

func (s *apiKeyStrategy) Refresh(ctx context.Context) error { return nil }

// anonStrategy attaches nothing. Used only for the login bootstrap call.
type anonStrategy struct{}

func (anonStrategy) Apply(req *http.Request)           {}
func (anonStrategy) IsExpired() bool                   { return false }
func (anonStrategy) Refresh(ctx context.Context) error { return nil }

// refreshResponse is the body returned by both refresh endpoints. The server
// may rotate the refresh token; when it does, the rotated value replaces the
// stored one.
type refreshResponse struct {
	Token        string    `json:"token" validate:"required"`
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// bearerStrategy authenticates with a bearer token and renews it through a
// refresh endpoint. The same type covers direct-token and OAuth2 credentials;
// they differ only in which endpoint performs the exchange.
type bearerStrategy struct {
	refreshURL     string
	httpClient     *http.Client
	refreshTimeout time.Duration
	margin         time.Duration
	userAgent      string
	logger         zerolog.Logger

	group singleflight.Group

	// mu guards the credential. Reads (Apply, IsExpired) take the read
	// lock; only a completed exchange mutates it.
	mu           sync.RWMutex
	token        string
	refreshToken string
	expiresAt    time.Time
	gen          uint64
}

func newBearerStrategy(baseURL, path, token, refreshToken string, expiresAt time.Time, opts *clientOptions) *bearerStrategy {
	if expiresAt.IsZero() {
		// The caller did not supply an expiry; a JWT usually carries one.
		expiresAt = jwtExpiry(token)
	}
	return &bearerStrategy{
		refreshURL:     baseURL + path,
		httpClient:     opts.httpClient,
		refreshTimeout: opts.refreshTimeout,
		margin:         opts.expiryMargin,
		userAgent:      opts.userAgent,
		logger:         opts.logger,
		token:          token,
		refreshToken:   refreshToken,
		expiresAt:      expiresAt,
	}
}

// jwtExpiry extracts the exp claim without verifying the signature; the
// client only needs the instant, the server remains the authority on
// validity. Returns the zero time when token is not a JWT or has no exp.
func jwtExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (s *bearerStrategy) Apply(req *http.Request) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	req.Header.Set("Authorization", "Bearer "+token)
}

func (s *bearerStrategy) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiresAt.IsZero() {
		// No known expiry: treat as valid until the server says otherwise.
		return false
	}
	return !time.Now().Before(s.expiresAt.Add(-s.margin))
}

func (s *bearerStrategy) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Refresh renews the credential through the strategy's refresh endpoint.
// All concurrent callers join the same in-flight exchange and observe the
// same outcome. A caller whose context ends while waiting detaches with its
// context error; the exchange itself keeps running for the other waiters.
func (s *bearerStrategy) Refresh(ctx context.Context) error {
	gen := s.generation()

	ch := s.group.DoChan("refresh", func() (any, error) {
		// A flight that raced ahead of us already swapped the credential;
		// reuse it instead of spending another exchange.
		if s.generation() != gen {
			return nil, nil
		}
		return nil, s.exchange()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return wrapTransportError(ctx.Err())
	}
}

// exchange performs the actual token exchange. It runs on its own timeout
// budget, detached from any caller's context, so one caller hanging up never
// cancels a refresh other callers depend on.
func (s *bearerStrategy) exchange() error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return &Error{Kind: KindUnauthorized, Message: "no refresh token available"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return &Error{Kind: KindValidation, Message: "encoding refresh request", cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("building refresh request: %v", err), cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The refresh token itself was rejected; distinct from an expired
		// access token and not retried here. Re-login is the way out.
		return &Error{
			Kind:       KindUnauthorized,
			Message:    fmt.Sprintf("refresh token rejected: %s", serverMessage(resp.StatusCode, body)),
			StatusCode: resp.StatusCode,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errorFromResponse(resp.StatusCode, resp.Header, body)
	}

	var renewed refreshResponse
	if err := decodeStrict(body, &renewed); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = renewed.Token
	s.expiresAt = renewed.ExpiresAt
	if renewed.RefreshToken != "" {
		s.refreshToken = renewed.RefreshToken
	}
	s.gen++
	s.mu.Unlock()

	s.logger.Debug().Time("expires_at", renewed.ExpiresAt).Msg("Refreshed access token")
	return nil
}
