// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	notificationstore "github.com/flowdesk/flowdesk/internal/app/store/notifications"
	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// Handler serves task CRUD, the board query, and drag-drop move commits.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
	Audit *auditlog.Logger
	Hub   realtime.Publisher
}

// NewHandler constructs a tasks handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard, audit *auditlog.Logger, hub realtime.Publisher) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g, Audit: audit, Hub: hub}
}

// requestIDs resolves the guard org id plus one route param object id.
func requestIDs(w http.ResponseWriter, r *http.Request, gc guard.Context, param, what string) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	id, err := objectIDParam(r, param)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid "+what+" id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return orgID, id, true
}

// publishTask fans a task event out to the org room on its own
// goroutine. Delivery is best effort; the mutation already committed.
func (h *Handler) publishTask(name string, task models.Task) {
	if h.Hub == nil {
		return
	}
	payload, err := json.Marshal(task)
	if err != nil {
		h.Log.Warn("marshal task event", zap.Error(err), zap.String("event", name))
		return
	}
	go h.Hub.Publish(realtime.Event{
		Room:    realtime.OrgRoom(task.OrgID.Hex()),
		Name:    name,
		Payload: payload,
	})
}

// notifyAssignee writes the assignment to the assignee's inbox and pings
// their personal room. Self-assignment stays quiet.
func (h *Handler) notifyAssignee(task models.Task, actorID primitive.ObjectID) {
	if task.AssigneeID == nil || *task.AssigneeID == actorID {
		return
	}
	assignee := *task.AssigneeID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()

		if _, err := notificationstore.New(h.DB).Create(ctx, models.Notification{
			UserID: assignee,
			OrgID:  task.OrgID,
			Type:   models.NotifyTaskAssigned,
			Payload: map[string]string{
				"task_id":    task.ID.Hex(),
				"project_id": task.ProjectID.Hex(),
				"title":      task.Title,
			},
		}); err != nil {
			h.Log.Warn("assignment notification", zap.Error(err), zap.String("task_id", task.ID.Hex()))
		}

		if h.Hub != nil {
			payload, _ := json.Marshal(map[string]string{
				"type":    models.NotifyTaskAssigned,
				"task_id": task.ID.Hex(),
				"title":   task.Title,
			})
			h.Hub.Publish(realtime.Event{
				Room:    realtime.UserRoom(assignee.Hex()),
				Name:    realtime.EventNotification,
				Payload: payload,
			})
		}
	}()
}
