// internal/app/features/tasks/view.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/htmlsanitize"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// ServeView handles GET /orgs/{orgID}/tasks/{taskID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := taskstore.New(h.DB, h.Log).GetByID(ctx, orgID, taskID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("view task", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, toTaskResponse(*task))
}

// HandleUpdate handles PATCH /orgs/{orgID}/tasks/{taskID}. Move and
// assignment have their own endpoints; this one covers the flat fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Description != nil {
		clean := htmlsanitize.Sanitize(*req.Description)
		req.Description = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := taskstore.New(h.DB, h.Log).Update(ctx, orgID, taskID, taskstore.Update{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
	})
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.TaskUpdated(ctx, r, orgID, actorID, taskID)
	}
	h.publishTask(realtime.EventTaskUpdated, *task)
	respond.JSON(w, http.StatusOK, toTaskResponse(*task))
}
