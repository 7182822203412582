package goatflow

import (
	"context"
	"net/http"
	"net/url"
)

// LDAPClient exposes directory integration: connection checks, user search,
// and synchronization runs.
type LDAPClient struct {
	t *transport
}

// TestConnection verifies the server can reach its configured directory.
func (c *LDAPClient) TestConnection(ctx context.Context) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/ldap/test",
	})
	return err
}

// SearchUsers queries the directory for users matching the search string.
func (c *LDAPClient) SearchUsers(ctx context.Context, search string) ([]LDAPUser, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/ldap/users",
		query:  params,
	})
	if err != nil {
		return nil, err
	}

	var users []LDAPUser
	if err := decodeStrict(body, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Sync runs a directory synchronization. With opts.DryRun the server reports
// what would change without writing anything.
func (c *LDAPClient) Sync(ctx context.Context, opts LDAPSyncOptions) (*LDAPSyncResult, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/ldap/sync",
		body:   opts,
	})
	if err != nil {
		return nil, err
	}

	var result LDAPSyncResult
	if err := decodeStrict(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LastSyncResult returns the outcome of the most recent synchronization run.
func (c *LDAPClient) LastSyncResult(ctx context.Context) (*LDAPSyncResult, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/ldap/sync/last",
	})
	if err != nil {
		return nil, err
	}

	var result LDAPSyncResult
	if err := decodeStrict(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
