// internal/app/features/tasks/assign.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleAssign handles POST /orgs/{orgID}/tasks/{taskID}/assign. The
// assignee must belong to the org. The new snapshot goes to the org
// room, and the assignee's personal room gets a notification ping.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	assignee, err := primitive.ObjectIDFromHex(req.AssigneeID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid assignee id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := orgmemberstore.New(h.DB).Get(ctx, orgID, assignee); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusBadRequest, "assignee is not a member of this organization")
			return
		}
		h.Log.Error("assign task: membership", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	task, err := taskstore.New(h.DB, h.Log).Assign(ctx, orgID, taskID, &assignee)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("assign task", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID)
	if aerr == nil {
		h.Audit.TaskAssigned(ctx, r, orgID, actorID, taskID, &assignee)
	}
	h.publishTask(realtime.EventTaskAssigned, *task)
	h.notifyAssignee(*task, actorID)
	respond.JSON(w, http.StatusOK, toTaskResponse(*task))
}

// HandleUnassign handles DELETE /orgs/{orgID}/tasks/{taskID}/assign.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := taskstore.New(h.DB, h.Log).Assign(ctx, orgID, taskID, nil)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("unassign task", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.TaskAssigned(ctx, r, orgID, actorID, taskID, nil)
	}
	h.publishTask(realtime.EventTaskAssigned, *task)
	respond.JSON(w, http.StatusOK, toTaskResponse(*task))
}
