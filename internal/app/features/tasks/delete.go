// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	commentstore "github.com/flowdesk/flowdesk/internal/app/store/comments"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /orgs/{orgID}/tasks/{taskID}. The column
// gap closes inside the store; comments go with the task.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := requestIDs(w, r, gc, "taskID", "task")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := taskstore.New(h.DB, h.Log)
	task, err := store.GetByID(ctx, orgID, taskID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("delete task: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := store.Delete(ctx, orgID, taskID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("delete task", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := commentstore.New(h.DB).DeleteByTask(ctx, orgID, taskID); err != nil {
		h.Log.Warn("delete task: comments", zap.Error(err), zap.String("task_id", taskID.Hex()))
	}

	if actorID, aerr := primitive.ObjectIDFromHex(gc.CallerID); aerr == nil {
		h.Audit.TaskDeleted(ctx, r, orgID, actorID, taskID, task.Title)
	}
	h.publishTask(realtime.EventTaskDeleted, *task)
	respond.NoContent(w)
}
