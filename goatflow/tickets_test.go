package goatflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		size     int
		expected int
	}{
		{"exact multiple", 100, 50, 2},
		{"with remainder", 120, 50, 3},
		{"single partial page", 7, 50, 1},
		{"empty", 0, 50, 0},
		{"one item", 1, 1, 1},
		{"size larger than total", 3, 10, 1},
		{"zero size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pageCount(tt.total, tt.size))
		})
	}
}

func TestTicketListOptionsValues(t *testing.T) {
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assigned := int64(9)

	opts := TicketListOptions{
		Page:         2,
		PageSize:     25,
		Status:       []TicketStatus{TicketStatusOpen, TicketStatusPending},
		Priority:     []TicketPriority{PriorityHigh},
		QueueID:      []int64{1, 4},
		AssignedTo:   &assigned,
		Search:       "printer",
		Tags:         []string{"hardware", "urgent"},
		CreatedAfter: &after,
		SortBy:       "updated_at",
		SortOrder:    SortAscending,
	}

	v := opts.values()
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "25", v.Get("page_size"))
	assert.Equal(t, []string{"open", "pending"}, v["status"])
	assert.Equal(t, []string{"high"}, v["priority"])
	assert.Equal(t, []string{"1", "4"}, v["queue_id"])
	assert.Equal(t, "9", v.Get("assigned_to"))
	assert.Equal(t, "printer", v.Get("search"))
	assert.Equal(t, []string{"hardware", "urgent"}, v["tags"])
	assert.Equal(t, "2024-03-01T00:00:00Z", v.Get("created_after"))
	assert.Equal(t, "updated_at", v.Get("sort_by"))
	assert.Equal(t, "asc", v.Get("sort_order"))
}

func TestTicketListOptionsDefaults(t *testing.T) {
	v := TicketListOptions{}.values()
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "50", v.Get("page_size"))
	assert.Equal(t, "created_at", v.Get("sort_by"))
	assert.Equal(t, "desc", v.Get("sort_order"))
	assert.Empty(t, v["status"])
}

func serverTicket(id int64, title, description string) Ticket {
	now := time.Now().UTC().Truncate(time.Second)
	return Ticket{
		ID:           id,
		TicketNumber: "GF-2024-0042",
		Title:        title,
		Description:  description,
		Status:       TicketStatusNew,
		Priority:     PriorityNormal,
		Type:         "incident",
		QueueID:      1,
		CustomerID:   3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestTicketsListComputesTotalPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))

		json.NewEncoder(w).Encode(TicketList{
			Items:      []Ticket{serverTicket(1, "a", "aa"), serverTicket(2, "b", "bb")},
			TotalCount: 120,
			Page:       1,
			PageSize:   50,
		})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	list, err := client.Tickets.List(context.Background(), TicketListOptions{Page: 1, PageSize: 50})
	require.NoError(t, err)

	assert.Equal(t, 120, list.TotalCount)
	assert.Equal(t, 3, list.TotalPages)
	assert.LessOrEqual(t, len(list.Items), 50)
}

func TestTicketsListIgnoresServerTotalPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A lying server: total_pages contradicts total_count/page_size.
		json.NewEncoder(w).Encode(map[string]any{
			"items":       []any{},
			"total_count": 10,
			"page":        1,
			"page_size":   5,
			"total_pages": 99,
		})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	list, err := client.Tickets.List(context.Background(), TicketListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalPages)
}

func TestTicketsCreateRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tickets", r.URL.Path)

		var req TicketCreateRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, PriorityNormal, req.Priority, "default applied client-side")
		assert.Equal(t, "incident", req.Type, "default applied client-side")

		created := serverTicket(42, req.Title, req.Description)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	ticket, err := client.Tickets.Create(context.Background(), TicketCreateRequest{
		Title:       "Printer on fire",
		Description: "It is literally on fire.",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), ticket.ID)
	assert.Equal(t, "Printer on fire", ticket.Title)
	assert.Equal(t, "It is literally on fire.", ticket.Description)
}

func TestTicketsCreateValidationShortCircuits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("an invalid request must never reach the server")
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	_, err = client.Tickets.Create(context.Background(), TicketCreateRequest{Description: "no title"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestTicketsGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/42", r.URL.Path)
		json.NewEncoder(w).Encode(serverTicket(42, "a", "b"))
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	ticket, err := client.Tickets.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ticket.ID)
}

func TestTicketsAddMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/42/messages", r.URL.Path)

		var req MessageCreateRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "note", req.MessageType)

		now := time.Now().UTC().Truncate(time.Second)
		json.NewEncoder(w).Encode(TicketMessage{
			ID:          1,
			TicketID:    42,
			Content:     req.Content,
			MessageType: req.MessageType,
			AuthorID:    2,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	msg, err := client.Tickets.AddMessage(context.Background(), 42, MessageCreateRequest{Content: "on it"})
	require.NoError(t, err)
	assert.Equal(t, "on it", msg.Content)
	assert.Equal(t, int64(42), msg.TicketID)
}

func TestTicketsDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/tickets/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	require.NoError(t, client.Tickets.Delete(context.Background(), 42))
}

func TestTicketsSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/search", r.URL.Path)
		assert.Equal(t, "fire", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(SearchResult{
			TotalCount: 1,
			Page:       1,
			PageSize:   50,
			Tickets:    []Ticket{serverTicket(42, "Printer on fire", "again")},
		})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	result, err := client.Tickets.Search(context.Background(), "fire", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Printer on fire", result.Tickets[0].Title)
}
