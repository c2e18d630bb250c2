// internal/app/features/projects/create.go
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	workspacestore "github.com/flowdesk/flowdesk/internal/app/store/workspaces"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleCreate handles POST /orgs/{orgID}/workspaces/{workspaceID}/projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, wsID, ok := requestIDs(w, r, gc, "workspaceID", "workspace")
	if !ok {
		return
	}
	creatorID, err := primitive.ObjectIDFromHex(gc.CallerID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := workspacestore.New(h.DB).GetByID(ctx, orgID, wsID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("create project: workspace", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	p, err := projectstore.New(h.DB).Create(ctx, models.Project{
		WorkspaceID: wsID,
		OrgID:       orgID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		CreatedBy:   creatorID,
	})
	if err != nil {
		if errors.Is(err, projectstore.ErrDuplicateSlug) {
			respond.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("create project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.ProjectCreated(ctx, r, orgID, creatorID, p.ID, p.Name)
	respond.JSON(w, http.StatusCreated, toProjectResponse(p))
}

// ServeList handles GET /orgs/{orgID}/workspaces/{workspaceID}/projects.
// A status query parameter narrows the result; soft-deleted projects
// never appear without it.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, wsID, ok := requestIDs(w, r, gc, "workspaceID", "workspace")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := projectstore.New(h.DB).ListByWorkspace(ctx, orgID, wsID, r.URL.Query().Get("status"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]projectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProjectResponse(p))
	}
	respond.JSON(w, http.StatusOK, out)
}
