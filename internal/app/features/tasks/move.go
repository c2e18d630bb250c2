// internal/app/features/tasks/move.go
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
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleMove handles POST /orgs/{orgID}/tasks/{taskID}/move. The store
// shifts neighbors and repositions the task in one transaction; on
// success the new snapshot fans out to the org room.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := taskstore.New(h.DB, h.Log)
	before, err := store.GetByID(ctx, orgID, taskID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("move task: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	task, err := store.Move(ctx, orgID, taskID, req.Status, req.Position)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.TaskMoved(ctx, r, orgID, actorID, taskID, before.Status, task.Status)
	}
	h.publishTask(realtime.EventTaskMoved, *task)
	respond.JSON(w, http.StatusOK, toTaskResponse(*task))
}
