// Package goatflow is a client for the GoatFlow ticketing API.
//
// Every call goes through one authenticated request pipeline: credentials
// are attached by a pluggable strategy, a stale token is refreshed exactly
// once across any number of concurrent callers, and every failure surfaces
// as a single *Error with a matchable Kind.
package goatflow

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Version of the client library.
const Version = "1.0.0"

// Client is the top-level GoatFlow API client. All resource clients share
// one request pipeline and one authentication strategy; callers never see
// which strategy is active.
type Client struct {
	Tickets   *TicketsClient
	Users     *UsersClient
	Queues    *QueuesClient
	Groups    *GroupsClient
	Webhooks  *WebhooksClient
	Notes     *NotesClient
	LDAP      *LDAPClient
	Dashboard *DashboardClient

	transport *transport
}

// NewWithAPIKey builds a client authenticating with a fixed API key.
func NewWithAPIKey(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("goatflow API key is required")
	}
	return newClient(baseURL, &apiKeyStrategy{key: apiKey}, resolveOptions(opts))
}

// NewWithToken builds a client from a pre-obtained bearer token. No network
// call happens at construction. A zero expiresAt is filled from the token's
// own exp claim when the token is a JWT.
func NewWithToken(baseURL, token, refreshToken string, expiresAt time.Time, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("goatflow token is required")
	}
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	return newClient(base, newBearerStrategy(base, refreshPath, token, refreshToken, expiresAt, o), o)
}

// NewWithOAuth2 builds a client from tokens obtained through a third-party
// OAuth2 flow. Identical to NewWithToken except renewal goes through the
// OAuth2 refresh endpoint.
func NewWithOAuth2(baseURL, accessToken, refreshToken string, expiresAt time.Time, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("goatflow access token is required")
	}
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	return newClient(base, newBearerStrategy(base, oauth2RefreshPath, accessToken, refreshToken, expiresAt, o), o)
}

// Login performs a one-time interactive login and returns a bearer client
// plus the authenticated user. This is a construction-time bootstrap, not a
// per-request operation.
func Login(ctx context.Context, baseURL, email, password string, opts ...Option) (*Client, *User, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, nil, err
	}
	o := resolveOptions(opts)

	req := AuthLoginRequest{Email: email, Password: password}
	if err := checkRequest(req); err != nil {
		return nil, nil, err
	}

	boot := &transport{
		baseURL:    base,
		httpClient: o.httpClient,
		auth:       anonStrategy{},
		userAgent:  o.userAgent,
		logger:     o.logger,
	}

	body, err := boot.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   loginPath,
		body:   req,
	})
	if err != nil {
		return nil, nil, err
	}

	var login AuthLoginResponse
	if err := decodeStrict(body, &login); err != nil {
		return nil, nil, err
	}

	client, err := newClient(base, newBearerStrategy(base, refreshPath, login.Token, login.RefreshToken, login.ExpiresAt, o), o)
	if err != nil {
		return nil, nil, err
	}

	o.logger.Info().Str("user", login.User.Email).Msg("Logged in to GoatFlow")
	return client, &login.User, nil
}

func newClient(baseURL string, auth AuthStrategy, o *clientOptions) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	t := &transport{
		baseURL:    base,
		httpClient: o.httpClient,
		auth:       auth,
		userAgent:  o.userAgent,
		logger:     o.logger,
	}

	return &Client{
		Tickets:   &TicketsClient{t: t},
		Users:     &UsersClient{t: t},
		Queues:    &QueuesClient{t: t},
		Groups:    &GroupsClient{t: t},
		Webhooks:  &WebhooksClient{t: t},
		Notes:     &NotesClient{t: t},
		LDAP:      &LDAPClient{t: t},
		Dashboard: &DashboardClient{t: t},
		transport: t,
	}, nil
}

// TestConnection verifies the base URL and credentials by fetching the
// authenticated user.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Users.Me(ctx)
	return err
}

func normalizeBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("goatflow URL is required")
	}
	return strings.TrimRight(baseURL, "/"), nil
}
