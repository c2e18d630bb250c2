// internal/app/features/invitations/types.go
package invitations

import (
	"time"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type createRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type acceptRequest struct {
	Token string `json:"token"`
}

type inviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toInviteResponse(i models.Invitation) inviteResponse {
	return inviteResponse{
		ID:        i.ID.Hex(),
		Email:     i.Email,
		Role:      i.Role,
		Token:     i.Token,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

type acceptResponse struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
}
