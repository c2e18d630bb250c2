// internal/app/features/auth/login.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/flowdesk/flowdesk/internal/app/store/users"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleLogin processes POST /auth/login. Every failure mode returns
// the same generic message so the endpoint cannot be used to probe for
// accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	user, err := users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("login: lookup user", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user.Status != "active" {
		h.Log.Warn("login attempt for disabled account", zap.String("user_id", user.ID.Hex()))
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !sessionauth.CheckPassword(user.PasswordHash, req.Password) {
		h.Log.Warn("login failed: wrong password", zap.String("user_id", user.ID.Hex()))
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.Sessions.SignIn(w, r, &sessionauth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
	}); err != nil {
		h.Log.Error("login: sign in", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("signed in", zap.String("user_id", user.ID.Hex()))
	respond.JSON(w, http.StatusOK, toUserResponse(*user))
}

// HandleLogout processes POST /auth/logout. Always succeeds, signed in
// or not.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session", zap.Error(err))
	}
	respond.NoContent(w)
}

// ServeMe handles GET /auth/me behind RequireSignedIn.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, ok := sessionauth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}
	respond.JSON(w, http.StatusOK, userResponse{
		ID:       su.ID,
		FullName: su.Name,
		Email:    su.Email,
	})
}
