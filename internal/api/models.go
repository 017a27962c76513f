package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an entity identifier. The backend uses UUIDs but older rows carry
// numeric ids, so IDs unmarshal from either a JSON string or number and
// compare as strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		if len(b) < 2 || b[len(b)-1] != '"' {
			return fmt.Errorf("invalid id %q", b)
		}
		*id = ID(b[1 : len(b)-1])
		return nil
	}
	*id = ID(b)
	return nil
}

func (id ID) String() string { return string(id) }

// Date is a calendar date (no time component) on the wire, "2006-01-02".
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// Task statuses. These four are the board's columns; anything else is
// dropped from the board entirely.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusArchived   = "archived"
)

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task is a card on the board.
type Task struct {
	ID             ID           `json:"id"`
	WorkspaceID    ID           `json:"workspace_id"`
	ProjectID      ID           `json:"project_id,omitempty"`
	ProjectName    string       `json:"project_name,omitempty"`
	ProjectColor   string       `json:"project_color,omitempty"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	Blocked        bool         `json:"blocked"`
	BlockReason    string       `json:"block_reason,omitempty"`
	OnHold         bool         `json:"on_hold"`
	HoldReason     string       `json:"hold_reason,omitempty"`
	DueDate        *Date        `json:"due_date,omitempty"`
	Position       int          `json:"position"`
	CreatedBy      ID           `json:"created_by,omitempty"`
	AssignedTo     ID           `json:"assigned_to,omitempty"`
	AssignedToName string       `json:"assigned_to_name,omitempty"`
	Updates        []TaskUpdate `json:"updates,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TaskUpdate is one entry in a task's comment trail.
type TaskUpdate struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskPatch is a partial task mutation. Nil fields are omitted so the
// backend only touches what the caller set.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Blocked     *bool   `json:"blocked,omitempty"`
	BlockReason *string `json:"block_reason,omitempty"`
	OnHold      *bool   `json:"on_hold,omitempty"`
	HoldReason  *string `json:"hold_reason,omitempty"`
	DueDate     *Date   `json:"due_date,omitempty"`
	ProjectID   *ID     `json:"project_id,omitempty"`
	Position    *int    `json:"position,omitempty"`
	AssignedTo  *ID     `json:"assigned_to,omitempty"`
}

// NewTask is the create payload.
type NewTask struct {
	WorkspaceID ID     `json:"workspace_id"`
	ProjectID   ID     `json:"project_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     *Date  `json:"due_date,omitempty"`
}

// Project groups tasks within a workspace.
type Project struct {
	ID          ID        `json:"id"`
	WorkspaceID ID        `json:"workspace_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// Workspace is a top-level board container.
type Workspace struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color"`
	OwnerID      ID        `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	MemberCount  int       `json:"member_count"`
	TaskCount    int       `json:"task_count"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Member roles.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Member is one workspace membership row.
type Member struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the authenticated identity record.
type User struct {
	ID          ID        `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	IsGuest     bool      `json:"is_guest"`
	IsActive    bool      `json:"is_active"`
	Theme       string    `json:"theme"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Notification is one inbox entry.
type Notification struct {
	ID        ID              `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationCount carries the unread badge number.
type NotificationCount struct {
	UnreadCount int `json:"unread_count"`
}

// ActivityEntry is one admin activity-log row.
type ActivityEntry struct {
	ID          ID              `json:"id"`
	UserID      ID              `json:"user_id,omitempty"`
	UserName    string          `json:"user_name,omitempty"`
	WorkspaceID ID              `json:"workspace_id,omitempty"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entity_type,omitempty"`
	EntityID    ID              `json:"entity_id,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalUsers      int            `json:"total_users"`
	ActiveUsers     int            `json:"active_users"`
	TotalWorkspaces int            `json:"total_workspaces"`
	TotalTasks      int            `json:"total_tasks"`
	TasksByStatus   map[string]int `json:"tasks_by_status"`
}

// SMTPSettings configures the backend's outbound mail.
type SMTPSettings struct {
	Host      string `json:"smtp_host"`
	Port      int    `json:"smtp_port"`
	User      string `json:"smtp_user"`
	Password  string `json:"smtp_password"`
	FromEmail string `json:"smtp_from_email"`
	FromName  string `json:"smtp_from_name"`
	UseTLS    bool   `json:"smtp_use_tls"`
}

// AppSettings is the backend's app-level configuration.
type AppSettings struct {
	AppBaseURL string `json:"app_base_url"`
}
