// internal/app/features/activity/feed.go
package activity

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type entryResponse struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	UserID    string            `json:"user_id"`
	Action    string            `json:"action"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toEntryResponse(e models.ActivityEntry) entryResponse {
	resp := entryResponse{
		ID:        e.ID.Hex(),
		UserID:    e.UserID.Hex(),
		Action:    e.Action,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
	if e.TaskID != nil {
		resp.TaskID = e.TaskID.Hex()
	}
	if e.ProjectID != nil {
		resp.ProjectID = e.ProjectID.Hex()
	}
	return resp
}

// ServeFeed handles GET /orgs/{orgID}/activity. Newest first; task_id,
// project_id, user_id, action, since (RFC 3339), and limit narrow the
// page.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	gc, _ := guard.FromRequest(r)
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return
	}

	var filter activitystore.QueryFilter
	q := r.URL.Query()

	if raw := q.Get("task_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid task_id")
			return
		}
		filter.TaskID = &id
	}
	if raw := q.Get("project_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		filter.ProjectID = &id
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	filter.Action = q.Get("action")
	if raw := q.Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = &ts
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := activitystore.New(h.DB).Query(ctx, orgID, filter)
	if err != nil {
		h.Log.Error("activity feed", zap.Error(err), zap.String("org_id", gc.OrgID))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	respond.JSON(w, http.StatusOK, out)
}
