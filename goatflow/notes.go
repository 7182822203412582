package goatflow

import (
	"context"
	"fmt"
	"net/http"
)

// NotesClient exposes internal notes and note templates. Notes are agent-only
// annotations; templates are reusable note bodies.
type NotesClient struct {
	t *transport
}

// List returns all internal notes for a ticket.
func (c *NotesClient) List(ctx context.Context, ticketID int64) ([]InternalNote, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/tickets/%d/notes", ticketID),
	})
	if err != nil {
		return nil, err
	}

	var notes []InternalNote
	if err := decodeStrict(body, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create adds an internal note to a ticket.
func (c *NotesClient) Create(ctx context.Context, ticketID int64, req NoteCreateRequest) (*InternalNote, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/tickets/%d/notes", ticketID),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var note InternalNote
	if err := decodeStrict(body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Update applies a partial update and returns the resulting note snapshot.
func (c *NotesClient) Update(ctx context.Context, noteID int64, req NoteUpdateRequest) (*InternalNote, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/notes/%d", noteID),
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var note InternalNote
	if err := decodeStrict(body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes an internal note.
func (c *NotesClient) Delete(ctx context.Context, noteID int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/notes/%d", noteID),
	})
	return err
}

// Pin marks a note as pinned so it surfaces at the top of the ticket.
func (c *NotesClient) Pin(ctx context.Context, noteID int64) (*InternalNote, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/notes/%d/pin", noteID),
	})
	if err != nil {
		return nil, err
	}

	var note InternalNote
	if err := decodeStrict(body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Unpin clears a note's pinned flag.
func (c *NotesClient) Unpin(ctx context.Context, noteID int64) (*InternalNote, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/notes/%d/pin", noteID),
	})
	if err != nil {
		return nil, err
	}

	var note InternalNote
	if err := decodeStrict(body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListTemplates returns all note templates.
func (c *NotesClient) ListTemplates(ctx context.Context) ([]NoteTemplate, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/note-templates",
	})
	if err != nil {
		return nil, err
	}

	var templates []NoteTemplate
	if err := decodeStrict(body, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateTemplate adds a reusable note template.
func (c *NotesClient) CreateTemplate(ctx context.Context, req NoteTemplateCreateRequest) (*NoteTemplate, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/note-templates",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var tmpl NoteTemplate
	if err := decodeStrict(body, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// DeleteTemplate removes a note template.
func (c *NotesClient) DeleteTemplate(ctx context.Context, templateID int64) error {
	_, err := c.t.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/note-templates/%d", templateID),
	})
	return err
}

// ApplyTemplate instantiates a template as a new internal note on a ticket.
func (c *NotesClient) ApplyTemplate(ctx context.Context, templateID, ticketID int64) (*InternalNote, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/note-templates/%d/apply", templateID),
		body:   map[string]int64{"ticket_id": ticketID},
	})
	if err != nil {
		return nil, err
	}

	var note InternalNote
	if err := decodeStrict(body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}
