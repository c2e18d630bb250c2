// internal/app/features/comments/create.go
package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	commentstore "github.com/flowdesk/flowdesk/internal/app/store/comments"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/htmlsanitize"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// taskIDs resolves the org and task ids shared by all comment handlers.
func taskIDs(w http.ResponseWriter, r *http.Request, gc guard.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	taskID, err := objectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid task id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return orgID, taskID, true
}

// HandleCreate handles POST /orgs/{orgID}/tasks/{taskID}/comments.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := taskIDs(w, r, gc)
	if !ok {
		return
	}
	authorID, err := primitive.ObjectIDFromHex(gc.CallerID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := taskstore.New(h.DB, h.Log).GetByID(ctx, orgID, taskID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("create comment: task", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	comment, err := commentstore.New(h.DB).Create(ctx, models.Comment{
		TaskID: taskID,
		OrgID:  orgID,
		UserID: authorID,
		Body:   strings.TrimSpace(htmlsanitize.Sanitize(req.Body)),
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.CommentAdded(ctx, r, orgID, authorID, taskID)
	h.publishComment(realtime.EventCommentAdded, comment)
	respond.JSON(w, http.StatusCreated, toCommentResponse(comment))
}

// ServeList handles GET /orgs/{orgID}/tasks/{taskID}/comments, oldest
// first so the thread reads top down.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := taskIDs(w, r, gc)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	thread, err := commentstore.New(h.DB).ListByTask(ctx, orgID, taskID)
	if err != nil {
		h.Log.Error("list comments", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]commentResponse, 0, len(thread))
	for _, c := range thread {
		out = append(out, toCommentResponse(c))
	}
	respond.JSON(w, http.StatusOK, out)
}
