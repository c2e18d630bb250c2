// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/htmlsanitize"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// HandleCreate handles POST /orgs/{orgID}/projects/{projectID}/tasks.
// The task lands at the bottom of its column.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
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

	if _, err := projectstore.New(h.DB).GetByID(ctx, orgID, projectID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("create task: project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	task := models.Task{
		ProjectID:   projectID,
		OrgID:       orgID,
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedBy:   creatorID,
		DueDate:     req.DueDate,
	}
	if req.AssigneeID != "" {
		assignee, err := primitive.ObjectIDFromHex(req.AssigneeID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid assignee id")
			return
		}
		task.AssigneeID = &assignee
	}

	task, err = taskstore.New(h.DB, h.Log).Create(ctx, task)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.TaskCreated(ctx, r, orgID, creatorID, task.ID, projectID, task.Title)
	h.publishTask(realtime.EventTaskCreated, task)
	h.notifyAssignee(task, creatorID)
	respond.JSON(w, http.StatusCreated, toTaskResponse(task))
}

// ServeList handles GET /orgs/{orgID}/projects/{projectID}/tasks. Tasks
// come back in board order, status then position.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := taskstore.New(h.DB, h.Log).ListByProject(ctx, orgID, projectID)
	if err != nil {
		h.Log.Error("list tasks", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]taskResponse, 0, len(list))
	for _, task := range list {
		out = append(out, toTaskResponse(task))
	}
	respond.JSON(w, http.StatusOK, out)
}

// ServeBoard handles GET /orgs/{orgID}/projects/{projectID}/board.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, projectID, ok := requestIDs(w, r, gc, "projectID", "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := projectstore.New(h.DB).GetByID(ctx, orgID, projectID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("board: project", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	list, err := taskstore.New(h.DB, h.Log).ListByProject(ctx, orgID, projectID)
	if err != nil {
		h.Log.Error("board: tasks", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	byStatus := map[string][]taskResponse{}
	for _, task := range list {
		byStatus[task.Status] = append(byStatus[task.Status], toTaskResponse(task))
	}
	board := boardResponse{Columns: make([]boardColumn, 0, len(models.TaskStatuses))}
	for _, status := range models.TaskStatuses {
		col := boardColumn{Status: status, Tasks: byStatus[status]}
		if col.Tasks == nil {
			col.Tasks = []taskResponse{}
		}
		board.Columns = append(board.Columns, col)
	}
	respond.JSON(w, http.StatusOK, board)
}
