package goatflow

import (
	"context"
	"fmt"
	"net/http"
)

// GroupsClient exposes the group resource family.
type GroupsClient struct {
	t *transport
}

// List returns all groups.
func (c *GroupsClient) List(ctx context.Context) ([]Group, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/groups",
	})
	if err != nil {
		return nil, err
	}

	var groups []Group
	if err := decodeStrict(body, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get fetches a single group by id.
func (c *GroupsClient) Get(ctx context.Context, id int64) (*Group, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/groups/%d", id),
	})
	if err != nil {
		return nil, err
	}

	var group Group
	if err := decodeStrict(body, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create adds a new group.
func (c *GroupsClient) Create(ctx context.Context, req GroupCreateRequest) (*Group, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/groups",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var group Group
	if err := decodeStrict(body, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group.
func (c *GroupsClient) Delete(ctx context.Context, id int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/groups/%d", id),
	})
	return err
}

// AddUser puts a user into a group.
func (c *GroupsClient) AddUser(ctx context.Context, groupID, userID int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/groups/%d/users/%d", groupID, userID),
	})
	return err
}

// RemoveUser takes a user out of a group.
func (c *GroupsClient) RemoveUser(ctx context.Context, groupID, userID int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/groups/%d/users/%d", groupID, userID),
	})
	return err
}
