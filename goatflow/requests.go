package goatflow

import (
	"net/url"
	"strconv"
	"time"
)

// Defaults applied when a list option or create request leaves a field unset.
const (
	DefaultPageSize    = 50
	defaultTicketType  = "incident"
	defaultMessageType = "note"
	defaultSortField   = "created_at"
)

// TicketCreateRequest is the payload for opening a ticket. Priority defaults
// to "normal" and Type to "incident" when left empty.
type TicketCreateRequest struct {
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description" validate:"required"`
	Priority     TicketPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Type         string         `json:"type,omitempty"`
	QueueID      *int64         `json:"queue_id,omitempty"`
	CustomerID   *int64         `json:"customer_id,omitempty"`
	AssignedTo   *int64         `json:"assigned_to,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// TicketUpdateRequest is a partial ticket update; nil and empty fields are
// left untouched by the server.
type TicketUpdateRequest struct {
	Title        *string         `json:"title,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Status       *TicketStatus   `json:"status,omitempty" validate:"omitempty,oneof=new open pending resolved closed"`
	Priority     *TicketPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Type         *string         `json:"type,omitempty"`
	QueueID      *int64          `json:"queue_id,omitempty"`
	AssignedTo   *int64          `json:"assigned_to,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	CustomFields map[string]any  `json:"custom_fields,omitempty"`
}

// MessageCreateRequest adds a message to a ticket conversation.
type MessageCreateRequest struct {
	Content      string         `json:"content" validate:"required"`
	MessageType  string         `json:"message_type,omitempty"`
	IsInternal   bool           `json:"is_internal"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// UserCreateRequest provisions a new account.
type UserCreateRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Login     string `json:"login" validate:"required"`
	Title     string `json:"title,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=admin agent user"`
	Password  string `json:"password" validate:"required,min=8"`
}

// UserUpdateRequest is a partial account update.
type UserUpdateRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Title     *string `json:"title,omitempty"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=admin agent user"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// QueueCreateRequest creates a ticket queue.
type QueueCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// QueueUpdateRequest is a partial queue update.
type QueueUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// GroupCreateRequest creates a user group.
type GroupCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// WebhookCreateRequest registers an outbound event subscription.
type WebhookCreateRequest struct {
	Name       string            `json:"name" validate:"required"`
	URL        string            `json:"url" validate:"required,url"`
	Events     []string          `json:"events" validate:"required,min=1"`
	Secret     string            `json:"secret,omitempty"`
	RetryCount int               `json:"retry_count,omitempty" validate:"omitempty,min=0"`
	Timeout    int               `json:"timeout,omitempty" validate:"omitempty,min=0"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// WebhookUpdateRequest is a partial webhook update.
type WebhookUpdateRequest struct {
	Name       *string           `json:"name,omitempty"`
	URL        *string           `json:"url,omitempty" validate:"omitempty,url"`
	Events     []string          `json:"events,omitempty"`
	Secret     *string           `json:"secret,omitempty"`
	IsActive   *bool             `json:"is_active,omitempty"`
	RetryCount *int              `json:"retry_count,omitempty"`
	Timeout    *int              `json:"timeout,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// NoteCreateRequest adds an internal note to a ticket.
type NoteCreateRequest struct {
	Content     string   `json:"content" validate:"required"`
	Category    string   `json:"category,omitempty"`
	IsImportant bool     `json:"is_important"`
	Tags        []string `json:"tags,omitempty"`
}

// NoteUpdateRequest is a partial internal-note update.
type NoteUpdateRequest struct {
	Content     *string  `json:"content,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsImportant *bool    `json:"is_important,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// NoteTemplateCreateRequest creates a reusable note template.
type NoteTemplateCreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsImportant bool     `json:"is_important"`
}

// LDAPSyncOptions controls a directory synchronization run.
type LDAPSyncOptions struct {
	DryRun bool `json:"dry_run"`
}

// AuthLoginRequest is the interactive login payload.
type AuthLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLoginResponse is the server's answer to a successful login.
type AuthLoginResponse struct {
	Token        string    `json:"token" validate:"required"`
	RefreshToken string    `json:"refresh_token" validate:"required"`
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	User         User      `json:"user"`
}

// TicketListOptions filters and paginates a ticket listing. Zero values fall
// back to page 1, DefaultPageSize, and created_at descending.
type TicketListOptions struct {
	Page          int
	PageSize      int
	Status        []TicketStatus
	Priority      []TicketPriority
	QueueID       []int64
	AssignedTo    *int64
	CustomerID    *int64
	Search        string
	Tags          []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortOrder     SortOrder
}

func (o TicketListOptions) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(pageOrDefault(o.Page)))
	v.Set("page_size", strconv.Itoa(pageSizeOrDefault(o.PageSize)))

	for _, s := range o.Status {
		v.Add("status", string(s))
	}
	for _, p := range o.Priority {
		v.Add("priority", string(p))
	}
	for _, id := range o.QueueID {
		v.Add("queue_id", strconv.FormatInt(id, 10))
	}
	if o.AssignedTo != nil {
		v.Set("assigned_to", strconv.FormatInt(*o.AssignedTo, 10))
	}
	if o.CustomerID != nil {
		v.Set("customer_id", strconv.FormatInt(*o.CustomerID, 10))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	for _, tag := range o.Tags {
		v.Add("tags", tag)
	}
	if o.CreatedAfter != nil {
		v.Set("created_after", o.CreatedAfter.UTC().Format(time.RFC3339))
	}
	if o.CreatedBefore != nil {
		v.Set("created_before", o.CreatedBefore.UTC().Format(time.RFC3339))
	}

	sortBy := o.SortBy
	if sortBy == "" {
		sortBy = defaultSortField
	}
	v.Set("sort_by", sortBy)

	order := o.SortOrder
	if order == "" {
		order = SortDescending
	}
	v.Set("sort_order", string(order))

	return v
}

// UserListOptions filters and paginates a user listing.
type UserListOptions struct {
	Page     int
	PageSize int
	Role     string
	IsActive *bool
	Search   string
}

func (o UserListOptions) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(pageOrDefault(o.Page)))
	v.Set("page_size", strconv.Itoa(pageSizeOrDefault(o.PageSize)))
	if o.Role != "" {
		v.Set("role", o.Role)
	}
	if o.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*o.IsActive))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	return v
}

// WebhookListOptions paginates a webhook listing.
type WebhookListOptions struct {
	Page     int
	PageSize int
	IsActive *bool
}

func (o WebhookListOptions) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(pageOrDefault(o.Page)))
	v.Set("page_size", strconv.Itoa(pageSizeOrDefault(o.PageSize)))
	if o.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*o.IsActive))
	}
	return v
}

func pageOrDefault(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func pageSizeOrDefault(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}

// pageCount computes ceil(total / size). The server's own page math is never
// trusted; listings recompute this from total_count and page_size.
func pageCount(total, size int) int {
	if size <= 0 {
		return 0
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
