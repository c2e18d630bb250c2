// internal/app/features/invitations/accept.go
package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	invitationstore "github.com/flowdesk/flowdesk/internal/app/store/invitations"
	notificationstore "github.com/flowdesk/flowdesk/internal/app/store/notifications"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/normalize"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleAccept handles POST /invitations/accept. The caller must be
// signed in with the invited email; the token alone is not enough.
// Redemption is single-use, and a caller who already belongs to the org
// gets a success response rather than a conflict.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionauth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respond.Error(w, http.StatusBadRequest, "invitation token is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := invitationstore.New(h.DB)
	inv, err := store.GetByToken(ctx, req.Token)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "invitation not found")
		return
	}
	if err != nil {
		h.Log.Error("accept invitation: lookup", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if inv.Email != normalize.Email(user.Email) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	inv, err = store.Redeem(ctx, req.Token)
	if err != nil {
		if errors.Is(err, invitationstore.ErrNotRedeemable) {
			respond.Error(w, http.StatusConflict, "invitation is expired or already used")
			return
		}
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "invitation not found")
			return
		}
		h.Log.Error("accept invitation: redeem", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	membersStore := orgmemberstore.New(h.DB)
	m, err := membersStore.Add(ctx, inv.OrgID, userID, inv.Role, &inv.InvitedBy)
	if err != nil {
		if errors.Is(err, orgmemberstore.ErrDuplicateMembership) {
			existing, gerr := membersStore.Get(ctx, inv.OrgID, userID)
			if gerr != nil {
				h.Log.Error("accept invitation: load membership", zap.Error(gerr))
				respond.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			respond.JSON(w, http.StatusOK, acceptResponse{OrgID: inv.OrgID.Hex(), Role: existing.Role})
			return
		}
		h.Log.Error("accept invitation: add member", zap.Error(err), zap.String("org_id", inv.OrgID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, nerr := notificationstore.New(h.DB).Create(ctx, models.Notification{
		UserID: userID,
		OrgID:  inv.OrgID,
		Type:   models.NotifyInviteReceive,
		Payload: map[string]string{
			"org_id": inv.OrgID.Hex(),
			"role":   inv.Role,
		},
	}); nerr != nil {
		h.Log.Warn("accept invitation: notification", zap.Error(nerr))
	}

	h.Audit.MemberJoined(ctx, r, inv.OrgID, userID, inv.Role)
	if h.Hub != nil {
		payload, _ := json.Marshal(map[string]string{
			"org_id":  inv.OrgID.Hex(),
			"user_id": userID.Hex(),
			"role":    inv.Role,
		})
		h.Hub.Publish(realtime.Event{
			Room:    realtime.OrgRoom(inv.OrgID.Hex()),
			Name:    realtime.EventMemberJoined,
			Payload: payload,
		})
	}

	respond.JSON(w, http.StatusOK, acceptResponse{OrgID: m.OrgID.Hex(), Role: m.Role})
}
