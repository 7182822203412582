package goatflow

import (
	"context"
	"fmt"
	"net/http"
)

// UserList is the paginated envelope for user listings.
type UserList struct {
	Items      []User `json:"items" validate:"omitempty,dive"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page" validate:"required,min=1"`
	PageSize   int    `json:"page_size" validate:"required,min=1"`
	TotalPages int    `json:"total_pages,omitempty"`
}

// UsersClient exposes the user resource family.
type UsersClient struct {
	t *transport
}

// List returns a page of users matching opts.
func (c *UsersClient) List(ctx context.Context, opts UserListOptions) (*UserList, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/users",
		query:  opts.values(),
	})
	if err != nil {
		return nil, err
	}

	var list UserList
	if err := decodeStrict(body, &list); err != nil {
		return nil, err
	}
	list.TotalPages = pageCount(list.TotalCount, list.PageSize)
	return &list, nil
}

// Get fetches a single user by id.
func (c *UsersClient) Get(ctx context.Context, id int64) (*User, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/users/%d", id),
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeStrict(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account the active credential belongs to.
func (c *UsersClient) Me(ctx context.Context) (*User, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/users/me",
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeStrict(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create provisions a new account. Role defaults to "user".
func (c *UsersClient) Create(ctx context.Context, req UserCreateRequest) (*User, error) {
	if req.Role == "" {
		req.Role = "user"
	}
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/users",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeStrict(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial update and returns the resulting user snapshot.
func (c *UsersClient) Update(ctx context.Context, id int64, req UserUpdateRequest) (*User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/users/%d", id),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeStrict(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account.
func (c *UsersClient) Delete(ctx context.Context, id int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/users/%d", id),
	})
	return err
}
