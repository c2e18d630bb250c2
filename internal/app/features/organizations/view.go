// internal/app/features/organizations/view.go
package organizations

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// ServeView handles GET /orgs/{orgID}. The guard has already verified
// membership, so a missing org here is a server-side inconsistency.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := organizationstore.New(h.DB).GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("view org", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toOrgResponse(*org))
}

// HandleUpdate handles PATCH /orgs/{orgID}. The slug is immutable.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs := organizationstore.New(h.DB)
	var upd organizationstore.Update
	if req.Name != nil {
		upd.Name = *req.Name
	}
	if req.LogoURL != nil {
		upd.LogoURL = *req.LogoURL
	}
	if req.Plan != nil {
		upd.Plan = *req.Plan
	}
	err = orgs.Update(ctx, orgID, upd)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("update org", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := orgs.GetByID(ctx, orgID)
	if err != nil {
		h.Log.Error("update org: reload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toOrgResponse(*org))
}
