// internal/app/features/projects/status.go
package projects

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleArchive handles POST /orgs/{orgID}/projects/{projectID}/archive.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ProjectArchived)
}

// HandleRestore handles POST /orgs/{orgID}/projects/{projectID}/restore.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ProjectActive)
}

// HandleDelete handles DELETE /orgs/{orgID}/projects/{projectID}. Soft
// delete; tasks stay in place but the project stops resolving.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := projectstore.New(h.DB)
	p, err := store.GetByID(ctx, orgID, projectID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		h.Log.Error("delete project: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := store.SetStatus(ctx, orgID, projectID, models.ProjectDeleted); err != nil {
		h.Log.Error("delete project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.ProjectDeleted(ctx, r, orgID, actorID, projectID, p.Name)
	}
	respond.NoContent(w)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := projectstore.New(h.DB)
	if err := store.SetStatus(ctx, orgID, projectID, status); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("set project status", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if status == models.ProjectArchived {
		if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
			h.Audit.ProjectArchived(ctx, r, orgID, actorID, projectID)
		}
	}

	p, err := store.GetByID(ctx, orgID, projectID)
	if err != nil {
		h.Log.Error("set project status: reload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toProjectResponse(*p))
}
