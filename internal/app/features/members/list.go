// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	userstore "github.com/flowdesk/flowdesk/internal/app/store/users"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// ServeList handles GET /orgs/{orgID}/members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roster, err := orgmemberstore.New(h.DB).ListByOrg(ctx, orgID)
	if err != nil {
		h.Log.Error("list members", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(roster))
	for _, m := range roster {
		ids = append(ids, m.UserID)
	}
	users, err := userstore.New(h.DB).GetMany(ctx, ids)
	if err != nil {
		h.Log.Error("list members: load users", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]memberResponse, 0, len(roster))
	for _, m := range roster {
		out = append(out, toMemberResponse(m, users[m.UserID]))
	}
	respond.JSON(w, http.StatusOK, out)
}
