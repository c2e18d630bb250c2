// internal/app/features/workspaces/types.go
package workspaces

import (
	"time"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type createRequest struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

type updateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWorkspaceResponse(ws models.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        ws.ID.Hex(),
		Name:      ws.Name,
		Slug:      ws.Slug,
		Color:     ws.Color,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}
