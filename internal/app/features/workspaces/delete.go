// internal/app/features/workspaces/delete.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	commentstore "github.com/flowdesk/flowdesk/internal/app/store/comments"
	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	workspacestore "github.com/flowdesk/flowdesk/internal/app/store/workspaces"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// ids resolves the org and workspace ids shared by the item handlers.
func (h *Handler) ids(w http.ResponseWriter, r *http.Request, gc guard.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid workspace id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return orgID, wsID, true
}

// HandleDelete handles DELETE /orgs/{orgID}/workspaces/{workspaceID}.
// Projects, their tasks, and task comments go with the workspace. The
// workspace document is removed last so a partial failure leaves the
// delete retryable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, wsID, ok := h.ids(w, r, gc)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := workspacestore.New(h.DB)
	if _, err := store.GetByID(ctx, orgID, wsID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("delete workspace: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	projectIDs, err := projectstore.New(h.DB).DeleteByWorkspace(ctx, orgID, wsID)
	if err != nil {
		h.Log.Error("delete workspace: projects", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	taskIDs, err := taskstore.New(h.DB, h.Log).DeleteByProjects(ctx, orgID, projectIDs)
	if err != nil {
		h.Log.Error("delete workspace: tasks", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := commentstore.New(h.DB).DeleteByTasks(ctx, orgID, taskIDs); err != nil {
		h.Log.Error("delete workspace: comments", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := store.Delete(ctx, orgID, wsID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("delete workspace", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("workspace deleted",
		zap.String("org_id", gc.OrgID),
		zap.String("workspace_id", wsID.Hex()),
		zap.Int("projects", len(projectIDs)),
		zap.Int("tasks", len(taskIDs)))
	respond.NoContent(w)
}
