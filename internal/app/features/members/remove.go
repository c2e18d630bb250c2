// internal/app/features/members/remove.go
package members

import (
	"context"
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

// HandleRemove handles DELETE /orgs/{orgID}/members/{userID}. Removing
// an OWNER is reserved for owners, and the last owner cannot be removed.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := orgmemberstore.New(h.DB)
	target, err := store.Get(ctx, orgID, userID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		h.Log.Error("remove member: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if target.Role == string(authz.RoleOwner) && gc.Role != authz.RoleOwner {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := store.Remove(ctx, orgID, userID); err != nil {
		if errors.Is(err, orgmemberstore.ErrLastOwner) {
			respond.Error(w, http.StatusConflict, "organization must keep at least one owner")
			return
		}
		h.Log.Error("remove member", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.MemberRemoved(ctx, r, orgID, actorID, userID)
	}
	respond.NoContent(w)
}
