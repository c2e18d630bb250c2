// internal/app/features/auth/types.go
package auth

import "github.com/flowdesk/flowdesk/internal/domain/models"

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the account shape returned by register/login/me.
type userResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID.Hex(),
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
