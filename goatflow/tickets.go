package goatflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// TicketList is the paginated envelope for ticket listings. TotalPages is
// recomputed client-side from TotalCount and PageSize on every call; a value
// sent by the server is discarded.
type TicketList struct {
	Items      []Ticket `json:"items" validate:"omitempty,dive"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page" validate:"required,min=1"`
	PageSize   int      `json:"page_size" validate:"required,min=1"`
	TotalPages int      `json:"total_pages,omitempty"`
}

// TicketsClient exposes the ticket resource family.
type TicketsClient struct {
	t *transport
}

// List returns a page of tickets matching opts. Pagination is best effort at
// the time of each call, not a transactional snapshot.
func (c *TicketsClient) List(ctx context.Context, opts TicketListOptions) (*TicketList, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/tickets",
		query:  opts.values(),
	})
	if err != nil {
		return nil, err
	}

	var list TicketList
	if err := decodeStrict(body, &list); err != nil {
		return nil, err
	}
	list.TotalPages = pageCount(list.TotalCount, list.PageSize)
	return &list, nil
}

// Get fetches a single ticket by id.
func (c *TicketsClient) Get(ctx context.Context, id int64) (*Ticket, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/tickets/%d", id),
	})
	if err != nil {
		return nil, err
	}

	var ticket Ticket
	if err := decodeStrict(body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Create opens a new ticket. Priority defaults to "normal" and Type to
// "incident" when left empty.
func (c *TicketsClient) Create(ctx context.Context, req TicketCreateRequest) (*Ticket, error) {
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	if req.Type == "" {
		req.Type = defaultTicketType
	}
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/tickets",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var ticket Ticket
	if err := decodeStrict(body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Update applies a partial update and returns the resulting ticket snapshot.
func (c *TicketsClient) Update(ctx context.Context, id int64, req TicketUpdateRequest) (*Ticket, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/tickets/%d", id),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var ticket Ticket
	if err := decodeStrict(body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Delete removes a ticket.
func (c *TicketsClient) Delete(ctx context.Context, id int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/tickets/%d", id),
	})
	return err
}

// AddMessage appends a message to the ticket conversation. MessageType
// defaults to "note".
func (c *TicketsClient) AddMessage(ctx context.Context, ticketID int64, req MessageCreateRequest) (*TicketMessage, error) {
	if req.MessageType == "" {
		req.MessageType = defaultMessageType
	}
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/tickets/%d/messages", ticketID),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var message TicketMessage
	if err := decodeStrict(body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages returns the full conversation for a ticket.
func (c *TicketsClient) ListMessages(ctx context.Context, ticketID int64) ([]TicketMessage, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/tickets/%d/messages", ticketID),
	})
	if err != nil {
		return nil, err
	}

	var messages []TicketMessage
	if err := decodeStrict(body, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Search runs a free-text search across tickets.
func (c *TicketsClient) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", fmt.Sprintf("%d", pageOrDefault(page)))
	params.Set("page_size", fmt.Sprintf("%d", pageSizeOrDefault(pageSize)))

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/tickets/search",
		query:  params,
	})
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := decodeStrict(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
