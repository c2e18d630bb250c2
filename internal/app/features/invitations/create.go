// internal/app/features/invitations/create.go
package invitations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	invitationstore "github.com/flowdesk/flowdesk/internal/app/store/invitations"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleCreate handles POST /orgs/{orgID}/invitations. The token comes
// back in the response body; distributing it is the caller's problem.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}
	actorID, err := primitive.ObjectIDFromHex(gc.CallerID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respond.Error(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if !authz.IsValid(authz.Role(req.Role)) {
		respond.Error(w, http.StatusBadRequest, "invalid role")
		return
	}
	if req.Role == string(authz.RoleOwner) && gc.Role != authz.RoleOwner {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := invitationstore.New(h.DB).Create(ctx, orgID, actorID, req.Email, req.Role, h.InviteTTL)
	if err != nil {
		h.Log.Error("create invitation", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.InviteSent(ctx, r, orgID, actorID, inv.Email, inv.Role)
	respond.JSON(w, http.StatusCreated, toInviteResponse(inv))
}

// ServeList handles GET /orgs/{orgID}/invitations. Only pending
// invitations are listed; redeemed ones live on in org_members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := invitationstore.New(h.DB).ListPendingByOrg(ctx, orgID)
	if err != nil {
		h.Log.Error("list invitations", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]inviteResponse, 0, len(pending))
	for _, inv := range pending {
		out = append(out, toInviteResponse(inv))
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleRevoke handles DELETE /orgs/{orgID}/invitations/{inviteID}.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}
	inviteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "inviteID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := invitationstore.New(h.DB)
	inv, err := store.GetByID(ctx, orgID, inviteID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "invitation not found")
		return
	}
	if err != nil {
		h.Log.Error("revoke invitation: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := store.Revoke(ctx, orgID, inviteID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "invitation not found")
			return
		}
		h.Log.Error("revoke invitation", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.InviteRevoked(ctx, r, orgID, actorID, inv.Email)
	}
	respond.NoContent(w)
}
