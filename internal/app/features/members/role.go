// internal/app/features/members/role.go
package members

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleChangeRole handles PATCH /orgs/{orgID}/members/{userID}/role.
// Promoting to OWNER or changing an OWNER's role is reserved for owners.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !authz.IsValid(authz.Role(req.Role)) {
		respond.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := orgmemberstore.New(h.DB)
	target, err := store.Get(ctx, orgID, userID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		h.Log.Error("change role: load member", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	touchesOwner := target.Role == string(authz.RoleOwner) || req.Role == string(authz.RoleOwner)
	if touchesOwner && gc.Role != authz.RoleOwner {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := store.UpdateRole(ctx, orgID, userID, req.Role); err != nil {
		if errors.Is(err, orgmemberstore.ErrLastOwner) {
			respond.Error(w, http.StatusConflict, "organization must keep at least one owner")
			return
		}
		h.Log.Error("change role", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.MemberRoleChanged(ctx, r, orgID, actorID, userID, target.Role, req.Role)
	}

	updated, err := store.Get(ctx, orgID, userID)
	if err != nil {
		h.Log.Error("change role: reload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"user_id": updated.UserID.Hex(),
		"role":    updated.Role,
	})
}
