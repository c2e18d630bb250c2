// internal/app/features/comments/delete.go
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
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/htmlsanitize"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
)

// HandleUpdate handles PATCH /orgs/{orgID}/tasks/{taskID}/comments/{commentID}.
// Only the author may edit; the store enforces it in the filter, so a
// foreign caller sees the same 404 as a missing comment.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, _, ok := taskIDs(w, r, gc)
	if !ok {
		return
	}
	commentID, err := objectIDParam(r, "commentID")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid comment id")
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

	comment, err := commentstore.New(h.DB).UpdateBody(ctx, orgID, commentID, authorID, strings.TrimSpace(htmlsanitize.Sanitize(req.Body)))
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "comment not found")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, toCommentResponse(*comment))
}

// HandleDelete handles DELETE /orgs/{orgID}/tasks/{taskID}/comments/{commentID}.
// Authors remove their own comments; admins remove anyone's.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, taskID, ok := taskIDs(w, r, gc)
	if !ok {
		return
	}
	commentID, err := objectIDParam(r, "commentID")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	callerID, err := primitive.ObjectIDFromHex(gc.CallerID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := commentstore.New(h.DB)
	comment, err := store.GetByID(ctx, orgID, commentID)
	if err == mongo.ErrNoDocuments {
		respond.Error(w, http.StatusNotFound, "comment not found")
		return
	}
	if err != nil {
		h.Log.Error("delete comment: load", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if comment.UserID != callerID && !authz.Satisfies(gc.Role, authz.RoleAdmin) {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := store.Delete(ctx, orgID, commentID); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "comment not found")
			return
		}
		h.Log.Error("delete comment", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Audit.CommentDeleted(ctx, r, orgID, callerID, taskID)
	respond.NoContent(w)
}
