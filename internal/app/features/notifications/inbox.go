// internal/app/features/notifications/inbox.go
package notifications

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	notificationstore "github.com/flowdesk/flowdesk/internal/app/store/notifications"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/timeouts"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type notificationResponse struct {
	ID        string            `json:"id"`
	OrgID     string            `json:"org_id"`
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

type listResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	Unread        int64                  `json:"unread"`
}

func toNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID.Hex(),
		OrgID:     n.OrgID.Hex(),
		Type:      n.Type,
		Payload:   n.Payload,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ServeList handles GET /notifications. Query parameters: unread=true
// narrows to unread entries, limit caps the page size.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := notificationstore.New(h.DB)
	list, err := store.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		h.Log.Error("list notifications", zap.Error(err), zap.String("user_id", userID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	unread, err := store.CountUnread(ctx, userID)
	if err != nil {
		h.Log.Error("count unread", zap.Error(err), zap.String("user_id", userID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := listResponse{
		Notifications: make([]notificationResponse, 0, len(list)),
		Unread:        unread,
	}
	for _, n := range list {
		out.Notifications = append(out.Notifications, toNotificationResponse(n))
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleMarkRead handles POST /notifications/{notificationID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := notificationstore.New(h.DB).MarkRead(ctx, userID, id); err != nil {
		if err == mongo.ErrNoDocuments {
			respond.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		h.Log.Error("mark read", zap.Error(err), zap.String("user_id", userID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.NoContent(w)
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := notificationstore.New(h.DB).MarkAllRead(ctx, userID)
	if err != nil {
		h.Log.Error("mark all read", zap.Error(err), zap.String("user_id", userID.Hex()))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
