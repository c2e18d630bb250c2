// internal/app/features/projects/view.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// ServeView handles GET /orgs/{orgID}/projects/{projectID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := projectstore.New(h.DB).GetByID(ctx, orgID, projectID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		h.Log.Error("view project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toProjectResponse(*p))
}

// HandleUpdate handles PATCH /orgs/{orgID}/projects/{projectID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := projectstore.New(h.DB)
	err := store.Update(ctx, orgID, projectID, projectstore.Update{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		h.Log.Error("update project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.ProjectUpdated(ctx, r, orgID, actorID, projectID)
	}

	p, err := store.GetByID(ctx, orgID, projectID)
	if err != nil {
		h.Log.Error("update project: reload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toProjectResponse(*p))
}
