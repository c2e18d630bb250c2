// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	workspacestore "github.com/flowdesk/flowdesk/internal/app/store/workspaces"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleCreate handles POST /orgs/{orgID}/workspaces.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
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

	ws, err := workspacestore.New(h.DB).Create(ctx, models.Workspace{
		OrgID:     orgID,
		Name:      req.Name,
		Slug:      req.Slug,
		Color:     req.Color,
		CreatedBy: creatorID,
	})
	if err != nil {
		if errors.Is(err, workspacestore.ErrDuplicateSlug) {
			respond.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("create workspace", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, toWorkspaceResponse(ws))
}

// ServeList handles GET /orgs/{orgID}/workspaces.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := workspacestore.New(h.DB).ListByOrg(ctx, orgID)
	if err != nil {
		h.Log.Error("list workspaces", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]workspaceResponse, 0, len(list))
	for _, ws := range list {
		out = append(out, toWorkspaceResponse(ws))
	}
	respond.JSON(w, http.StatusOK, out)
}

// ServeView handles GET /orgs/{orgID}/workspaces/{workspaceID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, wsID, ok := h.ids(w, r, gc)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := workspacestore.New(h.DB).GetByID(ctx, orgID, wsID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "workspace not found")
		return
	}
	if err != nil {
		h.Log.Error("view workspace", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toWorkspaceResponse(*ws))
}

// HandleUpdate handles PATCH /orgs/{orgID}/workspaces/{workspaceID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, wsID, ok := h.ids(w, r, gc)
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

	store := workspacestore.New(h.DB)
	err := store.Update(ctx, orgID, wsID, workspacestore.Update{Name: req.Name, Color: req.Color})
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "workspace not found")
		return
	}
	if err != nil {
		h.Log.Error("update workspace", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ws, err := store.GetByID(ctx, orgID, wsID)
	if err != nil {
		h.Log.Error("update workspace: reload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toWorkspaceResponse(*ws))
}
