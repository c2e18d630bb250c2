// internal/app/features/comments/types.go
package comments

import (
	"time"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type commentRequest struct {
	Body string `json:"body"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCommentResponse(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID.Hex(),
		TaskID:    c.TaskID.Hex(),
		UserID:    c.UserID.Hex(),
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
