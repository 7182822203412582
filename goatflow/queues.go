package goatflow

import (
	"context"
	"fmt"
	"net/http"
)

// QueuesClient exposes the queue resource family.
type QueuesClient struct {
	t *transport
}

// List returns all queues.
func (c *QueuesClient) List(ctx context.Context) ([]Queue, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/queues",
	})
	if err != nil {
		return nil, err
	}

	var queues []Queue
	if err := decodeStrict(body, &queues); err != nil {
		return nil, err
	}
	return queues, nil
}

// Get fetches a single queue by id.
func (c *QueuesClient) Get(ctx context.Context, id int64) (*Queue, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/queues/%d", id),
	})
	if err != nil {
		return nil, err
	}

	var queue Queue
	if err := decodeStrict(body, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// Create adds a new queue.
func (c *QueuesClient) Create(ctx context.Context, req QueueCreateRequest) (*Queue, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/queues",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var queue Queue
	if err := decodeStrict(body, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// Update applies a partial update and returns the resulting queue snapshot.
func (c *QueuesClient) Update(ctx context.Context, id int64, req QueueUpdateRequest) (*Queue, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/queues/%d", id),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var queue Queue
	if err := decodeStrict(body, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// Delete removes a queue.
func (c *QueuesClient) Delete(ctx context.Context, id int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/queues/%d", id),
	})
	return err
}
