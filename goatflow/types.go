package goatflow

import "time"

// TicketStatus represents the workflow state of a ticket.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// SortOrder is the direction of a list sort.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Ticket is a support ticket as reported by the server. Records are
// snapshots: updates come back as new values from a subsequent call, never
// as in-place mutation.
type Ticket struct {
	ID           int64           `json:"id" validate:"required"`
	TicketNumber string          `json:"ticket_number" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	Status       TicketStatus    `json:"status" validate:"required"`
	Priority     TicketPriority  `json:"priority" validate:"required"`
	Type         string          `json:"type" validate:"required"`
	QueueID      int64           `json:"queue_id" validate:"required"`
	CustomerID   int64           `json:"customer_id" validate:"required"`
	AssignedTo   *int64          `json:"assigned_to,omitempty"`
	CreatedAt    time.Time       `json:"created_at" validate:"required"`
	UpdatedAt    time.Time       `json:"updated_at" validate:"required"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	CustomFields map[string]any  `json:"custom_fields,omitempty"`
	Customer     *User           `json:"customer,omitempty"`
	AssignedUser *User           `json:"assigned_user,omitempty"`
	Queue        *Queue          `json:"queue,omitempty"`
	Messages     []TicketMessage `json:"messages,omitempty" validate:"omitempty,dive"`
	Attachments  []Attachment    `json:"attachments,omitempty" validate:"omitempty,dive"`
}

// IsOpen reports whether the ticket is still being worked on.
func (t *Ticket) IsOpen() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusClosed
}

// TicketMessage is a single message in a ticket conversation.
type TicketMessage struct {
	ID           int64          `json:"id" validate:"required"`
	TicketID     int64          `json:"ticket_id" validate:"required"`
	Content      string         `json:"content" validate:"required"`
	MessageType  string         `json:"message_type" validate:"required"`
	IsInternal   bool           `json:"is_internal"`
	AuthorID     int64          `json:"author_id" validate:"required"`
	CreatedAt    time.Time      `json:"created_at" validate:"required"`
	UpdatedAt    time.Time      `json:"updated_at" validate:"required"`
	Author       *User          `json:"author,omitempty"`
	Attachments  []Attachment   `json:"attachments,omitempty" validate:"omitempty,dive"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// User is an account known to the server: agent, admin, or customer.
type User struct {
	ID          int64     `json:"id" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Login       string    `json:"login" validate:"required"`
	Title       string    `json:"title"`
	Role        string    `json:"role" validate:"required"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Login
	}
}

// Queue is a bucket tickets are routed into.
type Queue struct {
	ID          int64     `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
}

// Group is a named collection of users.
type Group struct {
	ID          int64     `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
}

// Attachment is a file attached to a ticket or a ticket message.
type Attachment struct {
	ID          int64     `json:"id" validate:"required"`
	Filename    string    `json:"filename" validate:"required"`
	ContentType string    `json:"content_type" validate:"required"`
	Size        int64     `json:"size"`
	TicketID    int64     `json:"ticket_id" validate:"required"`
	MessageID   *int64    `json:"message_id,omitempty"`
	UploadedBy  int64     `json:"uploaded_by" validate:"required"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
}

// InternalNote is an agent-only annotation on a ticket.
type InternalNote struct {
	ID          int64     `json:"id" validate:"required"`
	TicketID    int64     `json:"ticket_id" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	Category    string    `json:"category"`
	IsImportant bool      `json:"is_important"`
	IsPinned    bool      `json:"is_pinned"`
	Tags        []string  `json:"tags"`
	AuthorID    int64     `json:"author_id" validate:"required"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
	EditedAt    time.Time `json:"edited_at"`
	EditedBy    int64     `json:"edited_by"`
}

// NoteTemplate is a reusable internal-note body.
type NoteTemplate struct {
	ID          int64     `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	IsImportant bool      `json:"is_important"`
	CreatedBy   int64     `json:"created_by" validate:"required"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
}

// LDAPUser is a directory entry returned by an LDAP search.
type LDAPUser struct {
	DN          string            `json:"dn" validate:"required"`
	Username    string            `json:"username" validate:"required"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	DisplayName string            `json:"display_name"`
	Phone       string            `json:"phone"`
	Department  string            `json:"department"`
	Title       string            `json:"title"`
	Manager     string            `json:"manager"`
	Groups      []string          `json:"groups"`
	Attributes  map[string]string `json:"attributes"`
	ObjectGUID  string            `json:"object_guid"`
	ObjectSID   string            `json:"object_sid"`
	LastLogin   time.Time         `json:"last_login"`
	IsActive    bool              `json:"is_active"`
}

// LDAPSyncResult summarizes one directory synchronization run.
type LDAPSyncResult struct {
	UsersFound    int       `json:"users_found"`
	UsersCreated  int       `json:"users_created"`
	UsersUpdated  int       `json:"users_updated"`
	UsersDisabled int       `json:"users_disabled"`
	GroupsFound   int       `json:"groups_found"`
	GroupsCreated int       `json:"groups_created"`
	GroupsUpdated int       `json:"groups_updated"`
	Errors        []string  `json:"errors"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Duration      string    `json:"duration"`
	DryRun        bool      `json:"dry_run"`
}

// Webhook is an outbound event subscription.
type Webhook struct {
	ID          int64             `json:"id" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	URL         string            `json:"url" validate:"required"`
	Events      []string          `json:"events" validate:"required"`
	Secret      *string           `json:"secret,omitempty"`
	IsActive    bool              `json:"is_active"`
	RetryCount  int               `json:"retry_count"`
	Timeout     int               `json:"timeout"`
	Headers     map[string]string `json:"headers,omitempty"`
	CreatedAt   time.Time         `json:"created_at" validate:"required"`
	UpdatedAt   time.Time         `json:"updated_at" validate:"required"`
	LastFiredAt *time.Time        `json:"last_fired_at,omitempty"`
}

// WebhookDelivery records one delivery attempt for a webhook.
type WebhookDelivery struct {
	ID          int64     `json:"id" validate:"required"`
	WebhookID   int64     `json:"webhook_id" validate:"required"`
	Event       string    `json:"event" validate:"required"`
	Payload     string    `json:"payload"`
	StatusCode  int       `json:"status_code"`
	Response    string    `json:"response"`
	Success     bool      `json:"success"`
	Attempt     int       `json:"attempt"`
	DeliveredAt time.Time `json:"delivered_at" validate:"required"`
}

// DashboardStats is the aggregate ticket overview shown on the dashboard.
type DashboardStats struct {
	TotalTickets      int            `json:"total_tickets"`
	OpenTickets       int            `json:"open_tickets"`
	ClosedTickets     int            `json:"closed_tickets"`
	PendingTickets    int            `json:"pending_tickets"`
	OverdueTickets    int            `json:"overdue_tickets"`
	UnassignedTickets int            `json:"unassigned_tickets"`
	MyTickets         int            `json:"my_tickets"`
	TicketsByStatus   map[string]int `json:"tickets_by_status"`
	TicketsByPriority map[string]int `json:"tickets_by_priority"`
	TicketsByQueue    map[string]int `json:"tickets_by_queue"`
}

// SearchResult is the envelope returned by free-text ticket search.
type SearchResult struct {
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page" validate:"required,min=1"`
	PageSize   int      `json:"page_size" validate:"required,min=1"`
	Tickets    []Ticket `json:"tickets" validate:"omitempty,dive"`
}
