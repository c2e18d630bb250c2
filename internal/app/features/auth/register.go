// internal/app/features/auth/register.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	userstore "github.com/flowdesk/flowdesk/internal/app/store/users"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
	"go.uber.org/zap"
)

const minPasswordLen = 8

// HandleRegister processes POST /auth/register. A successful signup
// also signs the new account in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FullName == "" {
		respond.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respond.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := sessionauth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	user, err := users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err == userstore.ErrDuplicateEmail {
		respond.Error(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		h.Log.Error("register: create user", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Sessions.SignIn(w, r, &sessionauth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
	}); err != nil {
		h.Log.Error("register: sign in", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("account registered", zap.String("user_id", user.ID.Hex()))
	respond.JSON(w, http.StatusCreated, toUserResponse(user))
}
