// internal/app/features/tasks/types.go
package tasks

import (
	"time"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due"`
}

type moveRequest struct {
	Status   string `json:"status"`
	Position int    `json:"position"`
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Position    int        `json:"position"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t models.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID.Hex(),
		ProjectID:   t.ProjectID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Position:    t.Position,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		resp.AssigneeID = t.AssigneeID.Hex()
	}
	return resp
}

// boardResponse groups a project's tasks by status in column order.
// Every column is present even when empty.
type boardResponse struct {
	Columns []boardColumn `json:"columns"`
}

type boardColumn struct {
	Status string         `json:"status"`
	Tasks  []taskResponse `json:"tasks"`
}
