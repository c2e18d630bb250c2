// internal/app/features/members/types.go
package members

import (
	"time"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type changeRoleRequest struct {
	Role string `json:"role"`
}

type memberResponse struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func toMemberResponse(m models.OrgMember, u models.User) memberResponse {
	return memberResponse{
		UserID:   m.UserID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}
