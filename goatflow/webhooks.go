package goatflow

import (
	"context"
	"fmt"
	"net/http"
)

// WebhookList is the paginated envelope for webhook listings.
type WebhookList struct {
	Items      []Webhook `json:"items" validate:"omitempty,dive"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page" validate:"required,min=1"`
	PageSize   int       `json:"page_size" validate:"required,min=1"`
	TotalPages int       `json:"total_pages,omitempty"`
}

// WebhooksClient exposes the webhook resource family.
type WebhooksClient struct {
	t *transport
}

// List returns a page of webhooks.
func (c *WebhooksClient) List(ctx context.Context, opts WebhookListOptions) (*WebhookList, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/webhooks",
		query:  opts.values(),
	})
	if err != nil {
		return nil, err
	}

	var list WebhookList
	if err := decodeStrict(body, &list); err != nil {
		return nil, err
	}
	list.TotalPages = pageCount(list.TotalCount, list.PageSize)
	return &list, nil
}

// Get fetches a single webhook by id.
func (c *WebhooksClient) Get(ctx context.Context, id int64) (*Webhook, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/webhooks/%d", id),
	})
	if err != nil {
		return nil, err
	}

	var hook Webhook
	if err := decodeStrict(body, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// Create registers a new webhook.
func (c *WebhooksClient) Create(ctx context.Context, req WebhookCreateRequest) (*Webhook, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/webhooks",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var hook Webhook
	if err := decodeStrict(body, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// Update applies a partial update and returns the resulting webhook snapshot.
func (c *WebhooksClient) Update(ctx context.Context, id int64, req WebhookUpdateRequest) (*Webhook, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/webhooks/%d", id),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var hook Webhook
	if err := decodeStrict(body, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// Delete removes a webhook.
func (c *WebhooksClient) Delete(ctx context.Context, id int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/webhooks/%d", id),
	})
	return err
}

// ListDeliveries returns recent delivery attempts for a webhook.
func (c *WebhooksClient) ListDeliveries(ctx context.Context, id int64) ([]WebhookDelivery, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/webhooks/%d/deliveries", id),
	})
	if err != nil {
		return nil, err
	}

	var deliveries []WebhookDelivery
	if err := decodeStrict(body, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// Test asks the server to fire a test event and returns the delivery record.
func (c *WebhooksClient) Test(ctx context.Context, id int64) (*WebhookDelivery, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/webhooks/%d/test", id),
	})
	if err != nil {
		return nil, err
	}

	var delivery WebhookDelivery
	if err := decodeStrict(body, &delivery); err != nil {
		return nil, err
	}
	return &delivery, nil
}
