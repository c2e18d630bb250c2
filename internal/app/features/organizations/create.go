// internal/app/features/organizations/create.go
package organizations

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleCreate processes POST /orgs. Any signed-in user may create an
// organization; the creator becomes its OWNER and the new org becomes
// the session's bound org.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Slug == "" {
		req.Slug = req.Name
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs := organizationstore.New(h.DB)
	org, err := orgs.Create(ctx, models.Organization{
		Name:      req.Name,
		Slug:      req.Slug,
		Plan:      req.Plan,
		CreatedBy: userID,
	})
	if err == organizationstore.ErrDuplicateSlug {
		respond.Error(w, http.StatusConflict, "an organization with this slug already exists")
		return
	}
	if err != nil {
		h.Log.Error("create org", zap.Error(err))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	members := orgmemberstore.New(h.DB)
	if _, err := members.Add(ctx, org.ID, userID, string(authz.RoleOwner), nil); err != nil {
		h.Log.Error("create org: add owner membership",
			zap.Error(err), zap.String("org_id", org.ID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Sessions.BindOrg(w, r, org.ID.Hex()); err != nil {
		h.Log.Warn("create org: bind session org", zap.Error(err))
	}

	h.Audit.MemberJoined(ctx, r, org.ID, userID, string(authz.RoleOwner))
	h.Log.Info("organization created",
		zap.String("org_id", org.ID.Hex()),
		zap.String("slug", org.Slug),
		zap.String("created_by", user.ID))
	respond.JSON(w, http.StatusCreated, toOrgResponse(org))
}

// ServeList handles GET /orgs: the caller's organizations with their
// role in each.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members := orgmemberstore.New(h.DB)
	memberships, err := members.ListByUser(ctx, userID)
	if err != nil {
		h.Log.Error("list orgs: memberships", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	roleByOrg := make(map[primitive.ObjectID]string, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrgID)
		roleByOrg[m.OrgID] = m.Role
	}

	orgs, err := organizationstore.New(h.DB).GetMany(ctx, ids)
	if err != nil {
		h.Log.Error("list orgs: load orgs", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]listItem, 0, len(orgs))
	for _, org := range orgs {
		items = append(items, listItem{
			orgResponse: toOrgResponse(org),
			Role:        roleByOrg[org.ID],
		})
	}
	respond.JSON(w, http.StatusOK, items)
}
