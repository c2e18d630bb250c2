// internal/app/features/organizations/delete.go
package organizations

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	commentstore "github.com/flowdesk/flowdesk/internal/app/store/comments"
	invitationstore "github.com/flowdesk/flowdesk/internal/app/store/invitations"
	notificationstore "github.com/flowdesk/flowdesk/internal/app/store/notifications"
	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	workspacestore "github.com/flowdesk/flowdesk/internal/app/store/workspaces"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /orgs/{orgID} (OWNER only). Deletes the
// organization and everything under it. The org document goes last so
// a partial failure leaves the org resolvable and the delete retryable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cascade := []struct {
		name string
		del  func(context.Context, primitive.ObjectID) (int64, error)
	}{
		{"tasks", taskstore.New(h.DB, h.Log).DeleteByOrg},
		{"comments", commentstore.New(h.DB).DeleteByOrg},
		{"projects", projectstore.New(h.DB).DeleteByOrg},
		{"workspaces", workspacestore.New(h.DB).DeleteByOrg},
		{"invitations", invitationstore.New(h.DB).DeleteByOrg},
		{"notifications", notificationstore.New(h.DB).DeleteByOrg},
		{"activity", activitystore.New(h.DB).DeleteByOrg},
		{"members", orgmemberstore.New(h.DB).DeleteByOrg},
	}
	for _, step := range cascade {
		n, err := step.del(ctx, orgID)
		if err != nil {
			h.Log.Error("delete org: cascade step failed",
				zap.Error(err),
				zap.String("org_id", gc.OrgID),
				zap.String("step", step.name))
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		if n > 0 {
			h.Log.Info("delete org: cascade",
				zap.String("org_id", gc.OrgID),
				zap.String("step", step.name),
				zap.Int64("deleted", n))
		}
	}

	err = organizationstore.New(h.DB).Delete(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("delete org", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("organization deleted",
		zap.String("org_id", gc.OrgID),
		zap.String("deleted_by", gc.CallerID))
	respond.NoContent(w)
}
